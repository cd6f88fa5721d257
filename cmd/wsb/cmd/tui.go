package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive TUI",
	Long: `Opens the terminal user interface for browsing workspaces and starting
builds with build options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return tui.Run(e.ctx, tui.Deps{Config: e.cfg, Source: e.src, Builder: e.builder})
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
