// Package main provides the kidsafe portal entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kpretz/kid-safe-youtube/config"
	"github.com/kpretz/kid-safe-youtube/favorites"
	"github.com/kpretz/kid-safe-youtube/feed"
	"github.com/kpretz/kid-safe-youtube/retry"
	"github.com/kpretz/kid-safe-youtube/server"
	"github.com/kpretz/kid-safe-youtube/syncer"
	"github.com/kpretz/kid-safe-youtube/youtube"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the kidsafe CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "kidsafe",
		Short:   "Kid-safe video portal backend",
		Long:    "Kidsafe serves a curated, kid-safe video portal backed by the YouTube Data API.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("kidsafe version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSnapshotCmd())

	return rootCmd
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine; real deployments set the
			// environment directly.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// newSnapshotCmd creates the snapshot subcommand. Printing the encoded
// token is the manual-mode recovery path: the operator pastes it into
// the hosting dashboard when remote sync is unavailable.
func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the encoded favorites snapshot token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(cfg.FavoritesFile)
			if err != nil {
				return fmt.Errorf("read %s: %w", cfg.FavoritesFile, err)
			}
			var c favorites.Collection
			if err := json.Unmarshal(data, &c); err != nil {
				return fmt.Errorf("parse %s: %w", cfg.FavoritesFile, err)
			}
			token, err := favorites.Encode(c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries
	retryCfg.InitialBackoff = cfg.InitialBackoff
	retryCfg.MaxBackoff = cfg.MaxBackoff
	retryCfg.Multiplier = cfg.BackoffMultiplier

	yt, err := youtube.NewClient(ctx, cfg.APIKey,
		youtube.WithRetryConfig(retryCfg),
		youtube.WithCallTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("youtube client: %w", err)
	}

	sync := syncer.New(syncer.Config{
		BaseURL:   cfg.SyncBaseURL,
		Token:     cfg.SyncToken,
		ServiceID: cfg.SyncServiceID,
		EnvKey:    cfg.SyncEnvKey,
		Timeout:   cfg.RequestTimeout,
	})
	if !sync.Enabled() {
		log.Printf("main: remote sync not configured, favorites changes stay local")
	}

	store := favorites.Open(cfg.FavoritesFile, cfg.FavoritesData, sync)
	history := favorites.NewHistory(store, yt)

	feedOpts := []feed.Option{}
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		feedOpts = append(feedOpts, feed.WithCache(feed.NewCache(redis.NewClient(redisOpts), cfg.CacheTTL)))
		log.Printf("main: feed caching enabled via %s", redisOpts.Addr)
	}
	feeds := feed.New(yt, feedOpts...)

	srv := server.New(feeds, store, history, yt, server.AdminConfig{
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    []byte(cfg.AdminJWTSecret),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Mount("/", srv.Routes())

	addr := ":" + cfg.Port
	log.Printf("main: listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
