// Package app assembles the process-wide dependencies shared by the commands.
package app

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"studentdesk/internal/aiwriter"
	"studentdesk/internal/config"
	"studentdesk/internal/db"
	"studentdesk/internal/logging"
	"studentdesk/internal/sheets"
)

// Connector returns the lazy connector for the configured storage backend.
// Nothing is dialled until the first request needs the backend.
func Connector(cfg *config.Config) (sheets.Connector, error) {
	switch cfg.StorageBackend {
	case config.BackendSheets, "":
		return func(ctx context.Context) (sheets.Backend, error) {
			creds, err := cfg.GoogleCredentials()
			if err != nil {
				return nil, errors.Wrap(err, "read google credentials")
			}
			if len(creds) == 0 {
				return nil, errors.New("GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be set")
			}
			return sheets.OpenGoogleBackend(ctx, cfg.SpreadsheetID, sheets.GoogleCredentialOptions(creds)...)
		}, nil
	case config.BackendPostgres:
		return func(ctx context.Context) (sheets.Backend, error) {
			if err := db.Connect(ctx, cfg.DatabaseURL); err != nil {
				return nil, err
			}
			if err := db.RunMigrations(ctx); err != nil {
				return nil, err
			}
			return sheets.NewPostgresBackend(db.DB), nil
		}, nil
	case config.BackendMemory:
		mem := sheets.NewMemoryBackend()
		return func(context.Context) (sheets.Backend, error) { return mem, nil }, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// OpenStore builds the cached store over the configured backend. The returned
// close func releases the database pool when one was opened.
func OpenStore(cfg *config.Config) (*sheets.Store, func(), error) {
	connect, err := Connector(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			logging.L().Warnf("close database: %v", err)
		}
	}
	return sheets.NewStore(sheets.NewProvider(connect), cfg.CacheTTL), closeFn, nil
}

// NewWriter builds the AI writer, loading the prompt file override when configured.
func NewWriter(ctx context.Context, cfg *config.Config) (*aiwriter.Writer, error) {
	prompts, err := aiwriter.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}
	return aiwriter.New(ctx, aiwriter.Config{
		APIKey:           cfg.GeminiAPIKey,
		Model:            cfg.GeminiModel,
		BaseURL:          cfg.GeminiBaseURL,
		Prompts:          prompts,
		MaxDocumentRunes: cfg.AnalysisMaxRunes,
	})
}
