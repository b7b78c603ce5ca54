package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studentdesk/internal/app"
	"studentdesk/internal/config"
	"studentdesk/internal/handlers"
	"studentdesk/internal/logging"
	"studentdesk/internal/models"
)

func main() {
	var envFile string
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the student management web app",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), envFile)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	cfg := config.LoadFrom(envFile)
	log, err := logging.Init(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logging.Sync()

	store, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	// Connect eagerly so a bad credential shows up in the log at startup. The
	// pages show the connection error and retry on their own.
	if err := store.Ping(ctx); err != nil {
		log.Warnf("storage not reachable yet: %v", err)
	}

	writer, err := app.NewWriter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init AI writer: %w", err)
	}

	workDir, _ := os.Getwd()
	router, err := handlers.NewRouter(handlers.RouterOptions{
		Config:    cfg,
		Repo:      models.NewRepository(store),
		AI:        writer,
		Drafts:    handlers.NewDraftStore(handlers.DefaultDraftTTL),
		StaticDir: filepath.Join(workDir, "web", "static"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.Port, "storage", cfg.StorageBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
