// Package rowstore abstrai a planilha usada como banco de dados: cada aba é
// uma tabela cuja primeira linha define as colunas.
package rowstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrRowNotFound indica referência de linha inexistente.
var ErrRowNotFound = errors.New("linha não encontrada")

// RowRef identifica uma linha para atualização ou remoção. O valor é opaco
// para quem consome o Store.
type RowRef int64

// Row mapeia nome de coluna para valor.
type Row struct {
	Ref    RowRef            `json:"ref"`
	Values map[string]string `json:"values"`
}

// Get devolve o valor da coluna ou vazio.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// Clone copia a linha para que alterações não vazem para o cache.
func (r Row) Clone() Row {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return Row{Ref: r.Ref, Values: values}
}

// Table é o conteúdo lido de uma aba.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn indica se o cabeçalho contém a coluna.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone copia cabeçalho e linhas.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// Store é o contrato do adaptador de planilha.
type Store interface {
	ReadRows(ctx context.Context, table string) (*Table, error)
	// AppendRow grava uma nova linha; fallbackColumns vira cabeçalho quando a
	// aba ainda está vazia.
	AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) error
	UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) error
	DeleteRow(ctx context.Context, table string, ref RowRef) error
	// EnsureColumn adiciona a coluna ao cabeçalho se ainda não existir.
	EnsureColumn(ctx context.Context, table, column string) error
}

// Error encapsula falhas do armazenamento externo.
type Error struct {
	Op    string
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("planilha: %s %q: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Table: table, Err: err}
}

// orderedValues alinha os valores ao cabeçalho; colunas ausentes ficam vazias.
func orderedValues(columns []string, values map[string]string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = values[c]
	}
	return out
}
