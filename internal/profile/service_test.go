package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/rowstore"
)

func newTestService(t *testing.T, rows ...map[string]string) (*Service, *rowstore.Memory) {
	t.Helper()
	store := rowstore.NewMemory()
	if len(rows) > 0 {
		store.Seed(TableName, Columns(), rows...)
	}
	return NewService(store, rowstore.NewSchema(store)), store
}

func TestCreateAppendsCollaborator(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	p, err := svc.Create(ctx, NewProfile{Name: " Ana ", Extension: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "colaborador", p.Role)

	tbl, err := store.ReadRows(ctx, TableName)
	require.NoError(t, err)
	assert.Equal(t, Columns(), tbl.Columns)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, Yes, tbl.Rows[0].Get(ColActive))
	assert.Equal(t, No, tbl.Rows[0].Get(ActivitySiga))
	assert.Equal(t, "", tbl.Rows[0].Get(ColPassword))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, NewProfile{Name: "Ana"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, NewProfile{Name: "Ana", Extension: "12a"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Create(ctx, NewProfile{Name: "Ana", Extension: "12", Role: "gestor"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateConflictAndReactivation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t,
		map[string]string{ColName: "Ana", ColExtension: "1", ColActive: Yes, ColRole: "colaborador"},
		map[string]string{ColName: "Bruno", ColExtension: "2", ColActive: No, ColRole: "colaborador", "Sei": Yes},
	)

	_, err := svc.Create(ctx, NewProfile{Name: "ana", Extension: "9"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	p, err := svc.Create(ctx, NewProfile{Name: "BRUNO", Extension: "22"})
	require.NoError(t, err)
	assert.True(t, p.Active)

	tbl, _ := store.ReadRows(ctx, TableName)
	require.Len(t, tbl.Rows, 2, "reativação não duplica a linha")
	assert.Equal(t, Yes, tbl.Rows[1].Get(ColActive))
	assert.Equal(t, "22", tbl.Rows[1].Get(ColExtension))
	assert.Equal(t, Yes, tbl.Rows[1].Get("Sei"))
}

func TestToggleActivity(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t,
		map[string]string{ColName: "Ana", ColActive: Yes, ColRole: "colaborador", ActivityWhatsapp: No},
	)

	v, err := svc.ToggleActivity(ctx, "ana", ActivityWhatsapp)
	require.NoError(t, err)
	assert.True(t, v)

	p, err := svc.FindActive(ctx, "Ana")
	require.NoError(t, err)
	assert.True(t, p.Has(ActivityWhatsapp))

	v, err = svc.ToggleActivity(ctx, "Ana", ActivityWhatsapp)
	require.NoError(t, err)
	assert.False(t, v)

	_, err = svc.ToggleActivity(ctx, "Ana", "Telepatia")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.ToggleActivity(ctx, "Carla", ActivityWhatsapp)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeactivateIsSoftDelete(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t,
		map[string]string{ColName: "Ana", ColActive: Yes, ColRole: "colaborador"},
	)

	require.NoError(t, svc.Deactivate(ctx, "Ana"))
	_, err := svc.FindActive(ctx, "Ana")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	p, err := svc.FindByName(ctx, "Ana")
	require.NoError(t, err)
	assert.False(t, p.Active)

	tbl, _ := store.ReadRows(ctx, TableName)
	assert.Len(t, tbl.Rows, 1)

	assert.True(t, errors.Is(svc.Deactivate(ctx, "Ana"), apperr.ErrNotFound))
}

func TestListActiveCollaborators(t *testing.T) {
	svc, _ := newTestService(t,
		map[string]string{ColName: "admin", ColActive: Yes, ColRole: "admin"},
		map[string]string{ColName: "Ana", ColActive: Yes, ColRole: "Colaborador"},
		map[string]string{ColName: "Bruno", ColActive: No, ColRole: "colaborador"},
		map[string]string{ColName: "Carla", ColActive: "Sim ", ColRole: "colaborador"},
	)

	list, err := svc.ListActiveCollaborators(context.Background())
	require.NoError(t, err)
	names := []string{}
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Ana", "Carla"}, names)
}

func TestSetPasswordKeepsOtherColumns(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t,
		map[string]string{ColName: "Ana", ColExtension: "10", ColActive: Yes, ColRole: "colaborador", "Sei": Yes},
	)

	require.NoError(t, svc.SetPassword(ctx, "Ana", "$argon2id$hash"))

	tbl, _ := store.ReadRows(ctx, TableName)
	row := tbl.Rows[0]
	assert.Equal(t, "$argon2id$hash", row.Get(ColPassword))
	assert.Equal(t, "10", row.Get(ColExtension))
	assert.Equal(t, Yes, row.Get("Sei"))
}

func TestProfileFlags(t *testing.T) {
	p := FromRow(rowstore.Row{Values: map[string]string{ColName: "Ana", "Sei": "Sim", ActivitySiga: " Sim"}})
	assert.Equal(t, []string{"Sei", ActivitySiga}, p.EnabledActivities())
	flags := p.Flags()
	assert.Len(t, flags, len(ActivityKeys))
	assert.Equal(t, Yes, flags["Sei"])
	assert.Equal(t, No, flags["Ti"])
}
