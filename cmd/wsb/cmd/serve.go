package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/wsb/internal/config"
	"github.com/tormodhaugland/wsb/internal/devserver"
	"github.com/tormodhaugland/wsb/internal/fixture"
	"github.com/tormodhaugland/wsb/internal/logging"
)

var (
	serveAddr     string
	serveFixtures string
	serveToken    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve fixture workspaces over the platform API",
	Long: `Runs a local API server backed by a YAML fixture file. Point wsb at it
with WSB_URL=http://<addr> to exercise the API client end to end.

A sample fixture file is written if none exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		path := serveFixtures
		if path == "" {
			path = cfg.FixturesPath()
		}
		if wrote, err := fixture.WriteSample(path); err != nil {
			return fmt.Errorf("failed to prepare fixtures: %w", err)
		} else if wrote {
			fmt.Fprintf(os.Stderr, "Wrote sample fixtures to %s\n", path)
		}

		store, err := fixture.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}

		log := logging.New(os.Stderr, cfg.LogLevel)
		ctx := logging.WithLogger(cmd.Context(), log)

		log.Info("serving", "addr", serveAddr, "fixtures", path)
		return devserver.Run(ctx, devserver.Config{
			Addr:   serveAddr,
			Store:  store,
			Token:  serveToken,
			Logger: log,
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:3000", "listen address")
	serveCmd.Flags().StringVar(&serveFixtures, "fixtures", "", "fixture file (default: <data_dir>/workspaces.yaml)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "require this session token")
	rootCmd.AddCommand(serveCmd)
}
