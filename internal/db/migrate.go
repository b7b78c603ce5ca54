package db

import (
	"context"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"studentdesk/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func RunMigrations(ctx context.Context) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	_, err := DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(err, "create migrations table")
	}

	files, err := MigrationFiles()
	if err != nil {
		return err
	}

	log := logging.L()
	for _, filename := range files {
		var count int
		err := DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = $1", filename).Scan(&count)
		if err != nil {
			return errors.Wrap(err, "check migration status")
		}
		if count > 0 {
			log.Debugf("Migration %s already applied, skipping", filename)
			continue
		}

		content, err := migrationsFS.ReadFile(path.Join("migrations", filename))
		if err != nil {
			return errors.Wrapf(err, "read migration %s", filename)
		}

		log.Infof("Applying migration: %s", filename)
		if _, err := DB.ExecContext(ctx, string(content)); err != nil {
			return errors.Wrapf(err, "apply migration %s", filename)
		}
		if _, err := DB.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", filename); err != nil {
			return errors.Wrapf(err, "record migration %s", filename)
		}
		log.Infof("Migration %s applied successfully", filename)
	}

	return nil
}

// MigrationFiles lists the embedded migrations in apply order.
func MigrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations directory")
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
