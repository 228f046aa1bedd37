package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wsconsole/config"
	"wsconsole/internal/api"
	"wsconsole/internal/infra/fs"
	"wsconsole/internal/logging"
	"wsconsole/internal/repo"
	"wsconsole/internal/transport/ws"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the command page and accept commands at /ws",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	cmd.Flags().String("db", "", "SQLite command log path (disabled when empty)")
	cmd.Flags().String("assets-dir", "", "serve page assets from this directory instead of the embedded copy")
	cmd.Flags().String("reply", config.ReplyEcho, "reply to each command: none or echo")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var commands repo.CommandLog
	if cfg.Server.DBPath != "" {
		log.Info().Str("path", cfg.Server.DBPath).Msg("opening command log")
		r, err := repo.NewSQLiteRepo(cfg.Server.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize command log: %w", err)
		}
		defer r.Close()
		commands = r
	}

	reader := fs.NewAssetReader(cfg.Server.AssetsDir)
	assets, err := reader.FS()
	if err != nil {
		return err
	}
	if !reader.FileExists(fs.IndexFile) {
		return fmt.Errorf("%s: %w", cfg.Server.AssetsDir, fs.ErrMissingIndex)
	}

	gin.SetMode(gin.ReleaseMode)
	server := ws.NewServer(logging.Component(log, "ws"), commands, cfg.Server.Reply)
	handler := api.NewHandler(server, assets, commands, logging.Component(log, "api"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewEngine(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("reply", cfg.Server.Reply).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
