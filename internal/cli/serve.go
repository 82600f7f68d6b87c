package cli

import (
	"github.com/spf13/cobra"

	"github.com/tulisify/tulisify/internal/entrypoint"
)

func newServeCommand(a *app) *cobra.Command {
	cfg := a.opts.Config
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the Tulisify HTTP API.

Settings come from the environment (PORT, DATABASE_PATH, STORAGE_DIR,
JWT_SECRET, ...); the flags below override the most common ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(cfg, a.opts.Version)
		},
	}

	cmd.Flags().Int32Var(&cfg.HTTP.Port, "port", cfg.HTTP.Port, "Port to listen on")
	cmd.Flags().StringVar(&cfg.HTTP.Host, "host", cfg.HTTP.Host, "Interface to bind")
	cmd.Flags().StringVar(&cfg.Database.Path, "db", cfg.Database.Path, "Path to the SQLite database")
	cmd.Flags().StringVar(&cfg.Storage.Dir, "storage", cfg.Storage.Dir, "Directory for uploaded covers and PDFs")
	cmd.Flags().BoolVar(&cfg.Database.SeedDemo, "seed", cfg.Database.SeedDemo, "Seed demo users and books on start")
	return cmd
}
