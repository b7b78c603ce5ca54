package sheets

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MemoryBackend keeps worksheets in process memory. It backs local
// development (STORAGE_BACKEND=memory) and tests.
type MemoryBackend struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

// NewMemoryBackend creates the schema's worksheets, each holding only its header row.
func NewMemoryBackend() *MemoryBackend {
	m := &MemoryBackend{tables: make(map[string][][]string)}
	for _, name := range TableNames() {
		s, _ := Lookup(name)
		m.tables[name] = [][]string{append([]string(nil), s.Columns...)}
	}
	return m
}

// NewEmptyMemoryBackend creates a backend whose worksheets exist but have no header row.
func NewEmptyMemoryBackend() *MemoryBackend {
	m := &MemoryBackend{tables: make(map[string][][]string)}
	for _, name := range TableNames() {
		m.tables[name] = nil
	}
	return m
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Values(_ context.Context, table string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "%q", table)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (m *MemoryBackend) AppendRow(_ context.Context, table string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; !ok {
		return errors.Wrapf(ErrTableNotFound, "%q", table)
	}
	m.tables[table] = append(m.tables[table], append([]string(nil), row...))
	return nil
}

// SetValues replaces a worksheet's contents wholesale, creating it if needed.
func (m *MemoryBackend) SetValues(table string, values [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = values
}

// Drop removes a worksheet.
func (m *MemoryBackend) Drop(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, table)
}
