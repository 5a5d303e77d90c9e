package main

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/urlstash/urlstash/internal/api"
	"github.com/urlstash/urlstash/internal/auth"
	"github.com/urlstash/urlstash/internal/config"
	"github.com/urlstash/urlstash/internal/db"
	"github.com/urlstash/urlstash/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
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

			userStore := store.NewUserStore(database)
			bookmarkStore := store.NewBookmarkStore(database)
			appConfigStore := store.NewAppConfigStore(database)
			tokenStore := auth.NewSQLTokenStore(database)

			google := auth.NewGoogleClient(cfg.Google.ClientID, cfg.Google.ClientSecret, appConfigStore, cfg.OAuthTimeout)
			issuer := auth.NewSessionIssuer(userStore, tokenStore)
			guard := auth.NewTokenMiddleware(tokenStore, userStore)

			baseURL := cfg.Server.BaseURL
			if baseURL == "" {
				if stored, err := appConfigStore.Get(cmd.Context(), store.ConfigSiteBaseURL); err == nil {
					baseURL = stored
				}
			}

			router := api.NewRouter(api.Deps{
				Google:     google,
				Issuer:     issuer,
				TokenGuard: guard,
				Bookmarks:  bookmarkStore,
				BaseURL:    baseURL,
			})

			log.Info("listening", "addr", cfg.HTTP.Addr)
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
