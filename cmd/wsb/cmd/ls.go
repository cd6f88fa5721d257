package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/model"
)

var lsOwner string

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List workspaces",
	Long:  `Lists all workspaces with optional filtering by owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		workspaces, err := e.src.Workspaces(e.ctx)
		if err != nil {
			return fmt.Errorf("failed to list workspaces: %w", err)
		}
		if lsOwner != "" {
			workspaces = filterByOwner(workspaces, lsOwner)
		}

		if jsonOut {
			if workspaces == nil {
				workspaces = []model.Workspace{}
			}
			return outputJSON(workspaces)
		}

		if len(workspaces) == 0 {
			fmt.Println("No workspaces found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WORKSPACE\tTEMPLATE\tBUILD\tSTATUS\tPARAMETER FLOW")
		for _, ws := range workspaces {
			flow := "dynamic"
			if ws.TemplateUseClassicParameterFlow {
				flow = "classic"
			}
			fmt.Fprintf(w, "%s\t%s\t#%d\t%s\t%s\n", ws.FullName(), ws.TemplateName, ws.LatestBuild.BuildNumber, ws.LatestBuild.Status, flow)
		}
		w.Flush()

		return nil
	},
}

func filterByOwner(workspaces []model.Workspace, owner string) []model.Workspace {
	var result []model.Workspace
	for _, ws := range workspaces {
		if ws.OwnerName == owner {
			result = append(result, ws)
		}
	}
	return result
}

func init() {
	lsCmd.Flags().StringVar(&lsOwner, "owner", "", "filter by owner")
	rootCmd.AddCommand(lsCmd)
}
