package demand

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/atendimento/internal/apperr"
	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/util"
)

var (
	admin = auth.Principal{Name: "admin", Role: auth.RoleAdmin}
	ana   = auth.Principal{Name: "Ana", Role: auth.RoleCollaborator}
	bruno = auth.Principal{Name: "Bruno", Role: auth.RoleCollaborator}
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
}

func TestMain(m *testing.M) {
	util.Location = time.UTC
	m.Run()
}

func TestTransitionToInProgress(t *testing.T) {
	d := Demand{ID: "EAL000001/2025", AssignedTo: "Ana"}

	patch, err := Transition(d, ana, StatusChange{Status: "Em andamento"}, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, Patch{ColStatus: StatusInProgress}, patch)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	d := Demand{AssignedTo: "Ana"}
	for _, status := range []string{"", "Não iniciada", "Pausada"} {
		_, err := Transition(d, ana, StatusChange{Status: status}, fixedNow())
		assert.True(t, errors.Is(err, apperr.ErrValidation), status)
	}
}

func TestTransitionRequiresOwnerOrAdmin(t *testing.T) {
	d := Demand{AssignedTo: "Ana"}

	_, err := Transition(d, bruno, StatusChange{Status: StatusInProgress}, fixedNow())
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = Transition(d, admin, StatusChange{Status: StatusInProgress}, fixedNow())
	assert.NoError(t, err)

	_, err = Transition(Demand{}, ana, StatusChange{Status: StatusInProgress}, fixedNow())
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "demanda sem responsável")
}

func TestTransitionToConcluded(t *testing.T) {
	d := Demand{AssignedTo: "Ana", Status: StatusInProgress}

	_, err := Transition(d, ana, StatusChange{Status: StatusConcluded}, fixedNow())
	assert.True(t, errors.Is(err, apperr.ErrValidation), "medidas adotadas obrigatórias")

	patch, err := Transition(d, ana, StatusChange{Status: StatusConcluded, MeasuresTaken: " Reinstalado "}, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, Patch{
		ColStatus:     "14/03/2025",
		ColFinishedBy: "Ana",
		ColMeasures:   "Reinstalado",
	}, patch)
}

func TestTransitionReopenedRequiresFinalResponse(t *testing.T) {
	d := Demand{AssignedTo: "Ana", ReopenCount: 1}

	_, err := Transition(d, ana, StatusChange{Status: StatusConcluded, MeasuresTaken: "ok"}, fixedNow())
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	patch, err := Transition(d, ana, StatusChange{Status: StatusConcluded, MeasuresTaken: "ok", FinalResponse: "resolvido"}, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, "resolvido", patch[ColFinalResponse])
}

func TestTransitionFromConcludedRejected(t *testing.T) {
	d := Demand{AssignedTo: "Ana", Status: "10/03/2025", Concluded: true}
	_, err := Transition(d, admin, StatusChange{Status: StatusInProgress}, fixedNow())
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestReopen(t *testing.T) {
	concluded := Demand{Status: "10/03/2025", Concluded: true, FinishedBy: "Ana", FinalAnswer: "x"}

	_, err := Reopen(concluded, ana, "voltou")
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = Reopen(concluded, admin, "  ")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = Reopen(Demand{Status: StatusInProgress}, admin, "voltou")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	patch, err := Reopen(concluded, admin, "voltou")
	require.NoError(t, err)
	assert.Equal(t, Patch{
		ColReopenCount:   "1",
		ColReopenReason:  "voltou",
		ColFinalResponse: "",
		ColStatus:        "",
		ColFinishedBy:    "",
	}, patch)

	concluded.ReopenCount = 1
	_, err = Reopen(concluded, admin, "de novo")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
