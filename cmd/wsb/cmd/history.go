package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/journal"
)

var (
	historyWorkspace string
	historyLimit     int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show submitted build requests",
	Long:  `Lists build requests recorded in the local journal, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := e.journal.List(e.ctx, historyWorkspace, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}

		if jsonOut {
			if entries == nil {
				entries = []journal.Entry{}
			}
			return outputJSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No build requests recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWORKSPACE\tSTATUS\tBUILD\tSUBMITTED\tPARAMETERS")
		for _, en := range entries {
			build := "-"
			if en.BuildNumber > 0 {
				build = fmt.Sprintf("#%d", en.BuildNumber)
			}
			status := string(en.Status)
			if en.Error != "" {
				status += ": " + en.Error
			}
			params := make([]string, len(en.Parameters))
			for i, p := range en.Parameters {
				params[i] = p.Name + "=" + p.Value
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", en.ID, en.Workspace, status, build,
				en.SubmittedAt.Local().Format("2006-01-02 15:04"), strings.Join(params, " "))
		}
		w.Flush()

		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyWorkspace, "workspace", "", "only show requests for owner/name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries")
	rootCmd.AddCommand(historyCmd)
}
