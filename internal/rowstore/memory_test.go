package rowstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAppendUsesFallbackHeader(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.AppendRow(ctx, "Perfil", map[string]string{"Atendente": "Ana", "Extra": "x"}, []string{"Atendente", "Ramal"})
	require.NoError(t, err)

	tbl, err := m.ReadRows(ctx, "Perfil")
	require.NoError(t, err)
	assert.Equal(t, []string{"Atendente", "Ramal"}, tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Ana", tbl.Rows[0].Get("Atendente"))
	assert.Equal(t, "", tbl.Rows[0].Get("Ramal"))
	_, hasExtra := tbl.Rows[0].Values["Extra"]
	assert.False(t, hasExtra)
}

func TestMemoryAppendWithoutHeaderFails(t *testing.T) {
	err := NewMemory().AppendRow(context.Background(), "Perfil", map[string]string{"a": "b"}, nil)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "append", se.Op)
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("Registro", []string{"ID", "Assunto"},
		map[string]string{"ID": "EAL000001/2025", "Assunto": "Email"},
		map[string]string{"ID": "WST000001/2025", "Assunto": "WhatsApp"},
	)

	tbl, err := m.ReadRows(ctx, "Registro")
	require.NoError(t, err)
	first := tbl.Rows[0]

	require.NoError(t, m.UpdateRow(ctx, "Registro", first.Ref, map[string]string{"ID": "EAL000001/2025"}))
	tbl, _ = m.ReadRows(ctx, "Registro")
	assert.Equal(t, "", tbl.Rows[0].Get("Assunto"), "colunas omitidas são gravadas vazias")

	require.NoError(t, m.DeleteRow(ctx, "Registro", first.Ref))
	tbl, _ = m.ReadRows(ctx, "Registro")
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "WST000001/2025", tbl.Rows[0].Get("ID"))

	err = m.DeleteRow(ctx, "Registro", first.Ref)
	assert.True(t, errors.Is(err, ErrRowNotFound))
	err = m.UpdateRow(ctx, "Registro", 999, nil)
	assert.True(t, errors.Is(err, ErrRowNotFound))
}

func TestMemoryReadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("Perfil", []string{"Atendente"}, map[string]string{"Atendente": "Ana"})

	tbl, _ := m.ReadRows(ctx, "Perfil")
	tbl.Rows[0].Values["Atendente"] = "Bruno"

	again, _ := m.ReadRows(ctx, "Perfil")
	assert.Equal(t, "Ana", again.Rows[0].Get("Atendente"))
}

func TestMemoryEnsureColumn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("Registro", []string{"ID"}, map[string]string{"ID": "A"})

	require.NoError(t, m.EnsureColumn(ctx, "Registro", "Origem"))
	require.NoError(t, m.EnsureColumn(ctx, "Registro", "Origem"))

	tbl, _ := m.ReadRows(ctx, "Registro")
	assert.Equal(t, []string{"ID", "Origem"}, tbl.Columns)
	assert.Equal(t, "", tbl.Rows[0].Get("Origem"))
}
