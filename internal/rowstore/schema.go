package rowstore

import (
	"context"
	"strings"
	"sync"
)

// Schema garante, uma vez por processo, que as colunas esperadas existam.
// Falhas não ficam memorizadas: a próxima chamada tenta de novo.
type Schema struct {
	store   Store
	mu      sync.Mutex
	ensured map[string]struct{}
}

// NewSchema cria o guardião de colunas para o store.
func NewSchema(store Store) *Schema {
	return &Schema{store: store, ensured: make(map[string]struct{})}
}

// Ensure cria cabeçalho e colunas ausentes na ordem informada.
func (s *Schema) Ensure(ctx context.Context, table string, columns []string) error {
	key := table + "\x00" + strings.Join(columns, "\x00")

	s.mu.Lock()
	_, done := s.ensured[key]
	s.mu.Unlock()
	if done {
		return nil
	}

	current, err := s.store.ReadRows(ctx, table)
	if err != nil {
		return err
	}
	for _, column := range columns {
		if current.HasColumn(column) {
			continue
		}
		if err := s.store.EnsureColumn(ctx, table, column); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ensured[key] = struct{}{}
	s.mu.Unlock()
	return nil
}
