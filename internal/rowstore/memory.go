package rowstore

import (
	"context"
	"errors"
	"sync"
)

// Memory guarda as abas em memória. Usado em testes e no backend "memory".
type Memory struct {
	mu     sync.Mutex
	tables map[string]*memTable
}

type memTable struct {
	columns []string
	rows    []Row
	nextRef RowRef
}

// NewMemory cria um store vazio.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*memTable)}
}

// Seed define o cabeçalho e acrescenta linhas, útil para preparar cenários.
func (m *Memory) Seed(table string, columns []string, rows ...map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	t.columns = append([]string(nil), columns...)
	for _, values := range rows {
		t.insert(values)
	}
}

func (m *Memory) table(name string) *memTable {
	t, ok := m.tables[name]
	if !ok {
		t = &memTable{nextRef: 1}
		m.tables[name] = t
	}
	return t
}

func (t *memTable) insert(values map[string]string) {
	row := Row{Ref: t.nextRef, Values: make(map[string]string, len(t.columns))}
	for _, c := range t.columns {
		row.Values[c] = values[c]
	}
	t.nextRef++
	t.rows = append(t.rows, row)
}

func (t *memTable) find(ref RowRef) int {
	for i, row := range t.rows {
		if row.Ref == ref {
			return i
		}
	}
	return -1
}

func (m *Memory) ReadRows(ctx context.Context, table string) (*Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	snapshot := &Table{Columns: t.columns, Rows: t.rows}
	return snapshot.Clone(), nil
}

func (m *Memory) AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	if len(t.columns) == 0 {
		if len(fallbackColumns) == 0 {
			return wrap("append", table, errors.New("aba sem cabeçalho"))
		}
		t.columns = append([]string(nil), fallbackColumns...)
	}
	t.insert(values)
	return nil
}

func (m *Memory) UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	idx := t.find(ref)
	if idx < 0 {
		return wrap("update", table, ErrRowNotFound)
	}
	row := Row{Ref: ref, Values: make(map[string]string, len(t.columns))}
	for _, c := range t.columns {
		row.Values[c] = values[c]
	}
	t.rows[idx] = row
	return nil
}

func (m *Memory) DeleteRow(ctx context.Context, table string, ref RowRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	idx := t.find(ref)
	if idx < 0 {
		return wrap("delete", table, ErrRowNotFound)
	}
	t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
	return nil
}

func (m *Memory) EnsureColumn(ctx context.Context, table, column string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	for _, c := range t.columns {
		if c == column {
			return nil
		}
	}
	t.columns = append(t.columns, column)
	for i := range t.rows {
		t.rows[i].Values[column] = ""
	}
	return nil
}
