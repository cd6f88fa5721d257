package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/model"
	"github.com/tormodhaugland/wsb/internal/popover"
)

// paramsOutput is the JSON shape of 'wsb params'.
type paramsOutput struct {
	Workspace   string                         `json:"workspace"`
	State       string                         `json:"state"`
	Parameters  []model.AutofillBuildParameter `json:"parameters"`
	Configure   []string                       `json:"configure,omitempty"`
	SettingsURL string                         `json:"settings_url,omitempty"`
	DocsURL     string                         `json:"docs_url,omitempty"`
}

var paramsCmd = &cobra.Command{
	Use:   "params <workspace>",
	Short: "Show the build options a workspace start would use",
	Long: `Loads the template's ephemeral parameters and the latest build's values
and prints what the build options form would be prefilled with.

The workspace can be given as owner/name or fuzzy matched:
  wsb params alice/dev
  wsb params dev`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ws, err := e.findWorkspace(args[0])
		if err != nil {
			return err
		}

		w := popover.Open(ws, e.popoverOptions()...)
		if err := popover.Load(e.ctx, e.src, w); err != nil {
			return err
		}

		out := paramsOutput{
			Workspace:  ws.FullName(),
			State:      w.Kind().String(),
			Parameters: []model.AutofillBuildParameter{},
		}
		switch st := w.State().(type) {
		case popover.FormReady:
			out.Parameters = st.Form.Values()
		case popover.RedirectEligible:
			out.SettingsURL = e.cfg.SiteLink(st.SettingsPath)
			for _, p := range st.Parameters {
				out.Configure = append(out.Configure, p.Name)
			}
		case popover.NoEphemeralParameters:
			out.DocsURL = st.DocsURL
		}

		if jsonOut {
			return outputJSON(out)
		}

		switch st := w.State().(type) {
		case popover.RedirectEligible:
			fmt.Printf("%s uses dynamic parameters. Configure these in workspace settings:\n", ws.FullName())
			for _, p := range st.Parameters {
				fmt.Printf("  %s\n", p.Label())
			}
			fmt.Printf("\n%s\n", out.SettingsURL)
			return nil
		case popover.NoEphemeralParameters:
			fmt.Println("This template has no ephemeral build options.")
			fmt.Printf("Read the docs: %s\n", st.DocsURL)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tVALUE\tSOURCE")
		for _, v := range out.Parameters {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Value, v.Source)
		}
		tw.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
