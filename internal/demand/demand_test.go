package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gestaozabele/atendimento/internal/rowstore"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateNotStarted, StateOf(""))
	assert.Equal(t, StateNotStarted, StateOf(" Não iniciada "))
	assert.Equal(t, StateInProgress, StateOf("Em andamento"))
	assert.Equal(t, StateConcluded, StateOf("12/02/2025"))
	assert.Equal(t, StateConcluded, StateOf("Concluído em 12/02"))
	assert.Equal(t, StateOther, StateOf("aguardando peça"))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, CategoryUrgent, CategoryFromWeight(5))
	assert.Equal(t, CategoryMedium, CategoryFromWeight(3))
	assert.Equal(t, CategoryLow, CategoryFromWeight(2.99))

	assert.Equal(t, CategoryMedium, NormalizeCategory("medio"))
	assert.Equal(t, CategoryMedium, NormalizeCategory("MÉDIO"))
	assert.Equal(t, CategoryUrgent, NormalizeCategory(" Urgente"))
	assert.Equal(t, "", NormalizeCategory("alta"))
}

func TestFromRowFallsBackToLegacyRegistrar(t *testing.T) {
	d := FromRow(rowstore.Row{Values: map[string]string{
		ColID:              "EAL000001/2025",
		ColRegistrarLegacy: "Ana",
		ColMeta:            "2,5%",
		ColSigaMeta:        "0",
		ColReopenCount:     "1",
		ColStatus:          "01/02/2025",
	}})

	assert.Equal(t, "Ana", d.RegisteredBy)
	assert.Equal(t, 2.5, d.Meta)
	assert.Equal(t, DefaultSigaMeta, d.SigaMeta)
	assert.Equal(t, 1, d.ReopenCount)
	assert.True(t, d.Concluded)
}

func TestInSigaQueue(t *testing.T) {
	assert.True(t, Demand{RegisteredBy: "Ana"}.InSigaQueue())
	assert.False(t, Demand{RegisteredBy: "Ana", AssignedTo: "Bruno"}.InSigaQueue())
	assert.False(t, Demand{RegisteredBy: "Ana", Concluded: true}.InSigaQueue())
	assert.False(t, Demand{}.InSigaQueue())
}

func TestDemandIsStale(t *testing.T) {
	now := time.Date(2025, 3, 14, 0, 1, 0, 0, time.UTC)
	assert.True(t, Demand{RegisteredAt: "12/03/2025"}.IsStale(now, 48*time.Hour))
	assert.False(t, Demand{RegisteredAt: "13/03/2025"}.IsStale(now, 48*time.Hour))
	assert.False(t, Demand{RegisteredAt: "01/03/2025", Concluded: true}.IsStale(now, 48*time.Hour))
}
