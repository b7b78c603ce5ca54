package sheets

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PostgresBackend mirrors worksheets into the sheet_tables/sheet_rows tables
// created by the db migrations. Row order is insertion order.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) Name() string { return "postgres" }

func (p *PostgresBackend) Values(ctx context.Context, table string) ([][]string, error) {
	if err := p.requireTable(ctx, table); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT cells
		FROM sheet_rows
		WHERE table_name = $1
		ORDER BY position
	`, table)
	if err != nil {
		return nil, errors.Wrapf(err, "query rows of %s", table)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrapf(err, "scan row of %s", table)
		}
		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, errors.Wrapf(err, "decode row of %s", table)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (p *PostgresBackend) AppendRow(ctx context.Context, table string, row []string) error {
	if err := p.requireTable(ctx, table); err != nil {
		return err
	}
	cells, err := json.Marshal(row)
	if err != nil {
		return errors.Wrap(err, "encode row")
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO sheet_rows (id, table_name, cells)
		VALUES ($1, $2, $3::jsonb)
	`, uuid.New(), table, string(cells))
	return errors.Wrapf(err, "insert row into %s", table)
}

func (p *PostgresBackend) requireTable(ctx context.Context, table string) error {
	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sheet_tables WHERE name = $1)`, table).Scan(&exists)
	if err != nil {
		return errors.Wrapf(err, "look up table %s", table)
	}
	if !exists {
		return errors.Wrapf(ErrTableNotFound, "%q", table)
	}
	return nil
}
