package sheets

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"studentdesk/internal/logging"
)

// Store reads and appends worksheet rows through a shared backend, caching
// reads per table.
type Store struct {
	provider *Provider
	cache    *Cache
}

func NewStore(provider *Provider, ttl time.Duration) *Store {
	return &Store{provider: provider, cache: NewCache(ttl)}
}

// Ping connects the backend if it is not connected yet.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.provider.Backend(ctx)
	return err
}

// BackendName reports which backend is connected, or "" before the first connect.
func (s *Store) BackendName(ctx context.Context) string {
	b, err := s.provider.Backend(ctx)
	if err != nil {
		return ""
	}
	return b.Name()
}

// Load returns every row of table, served from cache within the TTL. A
// missing or empty worksheet is an empty table, not an error.
func (s *Store) Load(ctx context.Context, table string) (*Table, error) {
	schema, err := Lookup(table)
	if err != nil {
		return nil, err
	}
	return s.cache.Get(table, func() (*Table, error) {
		b, err := s.provider.Backend(ctx)
		if err != nil {
			return nil, err
		}
		values, err := b.Values(ctx, table)
		if errors.Is(err, ErrTableNotFound) {
			logging.L().Warnw("worksheet missing, treating as empty", "table", table)
			return emptyTable(schema), nil
		}
		if err != nil {
			return nil, markErr(ErrConnection, err, "read %s", table)
		}
		return buildTable(schema, values), nil
	})
}

// Read is Load for views: every failure is logged and an empty table returned.
func (s *Store) Read(ctx context.Context, table string) *Table {
	t, err := s.Load(ctx, table)
	if err != nil {
		logging.L().Errorw("worksheet read failed", "table", table, "error", err)
		if schema, lerr := Lookup(table); lerr == nil {
			return emptyTable(schema)
		}
		return &Table{Name: table}
	}
	return t
}

// Append writes rec as one new row of table. The record is mapped to columns
// through the schema and the live header is checked before anything is
// written. A worksheet with no header row gets the schema header first.
// Success invalidates the cached table.
func (s *Store) Append(ctx context.Context, table string, rec Record) error {
	schema, err := Lookup(table)
	if err != nil {
		return err
	}
	row, err := schema.Row(rec)
	if err != nil {
		return err
	}

	b, err := s.provider.Backend(ctx)
	if err != nil {
		return err
	}

	values, err := b.Values(ctx, table)
	if err != nil {
		return markErr(ErrWrite, err, "append to %s", table)
	}
	if len(values) == 0 || isBlank(values[0]) {
		if err := b.AppendRow(ctx, table, schema.Columns); err != nil {
			return markErr(ErrWrite, err, "header for %s", table)
		}
		logging.L().Infow("wrote header row", "table", table)
	} else if err := schema.CheckHeader(values[0]); err != nil {
		return err
	}

	if err := b.AppendRow(ctx, table, row); err != nil {
		s.cache.Invalidate(table)
		return markErr(ErrWrite, err, "append to %s", table)
	}
	s.cache.Invalidate(table)
	logging.L().Debugw("row appended", "table", table, "columns", len(row))
	return nil
}

// Invalidate drops the cached copy of table.
func (s *Store) Invalidate(table string) {
	s.cache.Invalidate(table)
}

// VerifySchema reads table directly from the backend and checks its header.
func (s *Store) VerifySchema(ctx context.Context, table string) error {
	schema, err := Lookup(table)
	if err != nil {
		return err
	}
	b, err := s.provider.Backend(ctx)
	if err != nil {
		return err
	}
	values, err := b.Values(ctx, table)
	if err != nil {
		return markErr(ErrConnection, err, "read %s", table)
	}
	if len(values) == 0 {
		return errors.Wrapf(ErrSchemaMismatch, "table %s has no header row", table)
	}
	return schema.CheckHeader(values[0])
}
