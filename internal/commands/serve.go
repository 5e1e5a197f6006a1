package commands

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dkorchagin/plume/internal/cache"
	"github.com/dkorchagin/plume/internal/config"
	"github.com/dkorchagin/plume/internal/migrate"
	"github.com/dkorchagin/plume/internal/storage"
	"github.com/dkorchagin/plume/internal/uploads"
	"github.com/dkorchagin/plume/internal/web"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := migrate.NewMigrator(store.DB()).Up(); err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}

			uploadStore, err := uploads.NewStore(cfg.Uploads.Dir)
			if err != nil {
				return err
			}

			router, _, err := web.New(web.Options{
				Store:      store,
				Uploads:    uploadStore,
				PageSize:   cfg.Feed.PageSize,
				IndexCache: cache.New(cfg.Feed.CacheTTL),
				Secret:     cfg.Session.Secret,
			})
			if err != nil {
				return err
			}

			addr := cfg.Server.Host + ":" + cfg.Server.Port
			log.Printf("Starting server on %s", addr)
			return router.Run(addr)
		},
	}
	return cmd
}
