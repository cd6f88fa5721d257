package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check workspaces for build option problems",
	Long: `Loads every workspace's template parameters and active build values
and reports values that no longer match the template or would fail
validation when prefilled into the build options form.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		problems, err := doctor.FindProblems(e.ctx, e.src)
		if err != nil {
			return fmt.Errorf("failed to check workspaces: %w", err)
		}

		if jsonOut {
			return outputJSON(problems)
		}

		if len(problems) == 0 {
			fmt.Println("No problems found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WORKSPACE\tKIND\tPARAMETER\tDETAIL")
		for _, p := range problems {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Workspace, p.Kind, p.Parameter, p.Detail)
		}
		w.Flush()

		return fmt.Errorf("%d problem(s) found", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
