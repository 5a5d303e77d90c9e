package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/urlstash/urlstash/internal/config"
	"github.com/urlstash/urlstash/internal/db"
	"github.com/urlstash/urlstash/internal/store"
)

// newSetupCmd provisions a deployment: provider credentials and site base
// URL into app_config, and the bootstrap superuser. Every step is an upsert
// or a create-if-absent, so re-running is safe.
func newSetupCmd() *cobra.Command {
	var baseURL string
	var adminUsername string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Apply deployment configuration (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			ctx := cmd.Context()
			appConfig := store.NewAppConfigStore(database)
			users := store.NewUserStore(database)

			if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
				log.Warn("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set; skipping provider config")
			} else {
				if err := appConfig.Set(ctx, store.ConfigGoogleClientID, cfg.Google.ClientID); err != nil {
					return fmt.Errorf("store client id: %w", err)
				}
				if err := appConfig.Set(ctx, store.ConfigGoogleClientSecret, cfg.Google.ClientSecret); err != nil {
					return fmt.Errorf("store client secret: %w", err)
				}
				log.Info("configured Google OAuth credentials")
			}

			if baseURL != "" {
				if err := appConfig.Set(ctx, store.ConfigSiteBaseURL, baseURL); err != nil {
					return fmt.Errorf("store base url: %w", err)
				}
				log.Info("set site base URL", "base_url", baseURL)
			}

			if cfg.AdminEmail == "" {
				log.Warn("STASH_ADMIN_EMAIL not set; skipping superuser bootstrap")
				return nil
			}
			admin, created, err := users.CreateSuperuser(ctx, cfg.AdminEmail, adminUsername)
			if err != nil {
				return fmt.Errorf("bootstrap superuser: %w", err)
			}
			if created {
				log.Info("created superuser", "email", admin.Email, "username", admin.Username)
			} else {
				log.Info("superuser already exists", "email", admin.Email)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "public base URL of this deployment (e.g. https://bookmarks.example.com)")
	cmd.Flags().StringVar(&adminUsername, "admin-username", "admin", "username for the bootstrap superuser")
	return cmd
}
