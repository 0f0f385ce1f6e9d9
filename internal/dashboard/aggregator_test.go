package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/atendimento/internal/demand"
	"github.com/gestaozabele/atendimento/internal/profile"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func opts() Options {
	return Options{Now: now, StaleAfter: 48 * time.Hour}
}

func collaborator(name string, activities ...string) profile.Profile {
	p := profile.Profile{Name: name, Extension: "100", Active: true, Role: "colaborador", Activities: map[string]bool{}}
	for _, a := range activities {
		p.Activities[a] = true
	}
	return p
}

func TestBuildCardsCountsAssignedOpenDemands(t *testing.T) {
	profiles := []profile.Profile{
		{Name: "admin", Active: true, Role: "admin"},
		collaborator("Ana"),
		{Name: "Bruno", Active: false, Role: "colaborador"},
	}
	demands := []demand.Demand{
		{AssignedTo: "Ana", Meta: 2, Status: ""},
		{AssignedTo: "Ana", Meta: 1.5, Status: demand.StatusInProgress},
		{AssignedTo: "Ana", Meta: 4, Status: "01/03/2025", Concluded: true},
		{AssignedTo: "Ana", Meta: 1, Status: "aguardando"},
		{AssignedTo: "ana", Meta: 9},
		{AssignedTo: "Bruno", Meta: 3},
	}

	cards := BuildCards(profiles, demands, opts())
	require.Len(t, cards, 1)
	c := cards[0]
	assert.Equal(t, "Ana", c.Name)
	assert.Equal(t, 4.5, c.Percent)
	assert.Equal(t, 1, c.InProgress)
	assert.Equal(t, 1, c.NotStarted)
	assert.False(t, c.Stale)
	assert.Len(t, c.Activities, len(profile.ActivityKeys))
	assert.Equal(t, profile.No, c.Activities[profile.ActivitySiga])
}

func TestBuildCardsBroadcastsSigaQueue(t *testing.T) {
	profiles := []profile.Profile{
		collaborator("Ana", profile.ActivitySiga),
		collaborator("Bruno", profile.ActivitySiga),
		collaborator("Carla"),
	}
	demands := []demand.Demand{
		{RegisteredBy: "Davi", SigaMeta: 1},
		{RegisteredBy: "Davi", SigaMeta: demand.DefaultSigaMeta},
		{RegisteredBy: "Davi", SigaMeta: 2},
		{RegisteredBy: "Davi", SigaMeta: 7, AssignedTo: "Carla"},
		{RegisteredBy: "Davi", SigaMeta: 7, Concluded: true},
	}

	cards := BuildCards(profiles, demands, opts())
	require.Len(t, cards, 3)
	for _, c := range cards[:2] {
		assert.Equal(t, 3, c.NotStarted, c.Name)
		assert.Equal(t, 3.5, c.Percent, c.Name)
	}
	assert.Equal(t, 1, cards[2].NotStarted)
	assert.Equal(t, 0.0, cards[2].Percent)
}

func TestBuildCardsFoldsWhatsappIntake(t *testing.T) {
	profiles := []profile.Profile{collaborator("Ana", profile.ActivityWhatsapp)}
	demands := []demand.Demand{
		{RegisteredBy: "Ana", Meta: 0.5, RegisteredAt: "01/03/2025"},
		{RegisteredBy: "Ana", Meta: 0.5, AssignedTo: "Bruno"},
		{RegisteredBy: "Bruno", Meta: 0.5},
		{RegisteredBy: "Ana", Meta: 0.5, Concluded: true},
	}

	cards := BuildCards(profiles, demands, opts())
	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].NotStarted)
	assert.Equal(t, 0.5, cards[0].Percent)
	assert.True(t, cards[0].Stale)
}

func TestBuildCardsStaleness(t *testing.T) {
	profiles := []profile.Profile{collaborator("Ana"), collaborator("Bruno", profile.ActivitySiga)}
	demands := []demand.Demand{
		{AssignedTo: "Ana", RegisteredAt: "12/03/2025"},
		{AssignedTo: "Ana", RegisteredAt: "01/01/2025", Concluded: true},
		{RegisteredBy: "Ana", RegisteredAt: "02/02/2025", SigaMeta: 0.5},
	}

	cards := BuildCards(profiles, demands, opts())
	assert.True(t, cards[0].Stale, "registrada há 60h")
	assert.True(t, cards[1].Stale, "fila SIGA atrasada")

	demands[0].RegisteredAt = "13/03/2025"
	demands[2].RegisteredAt = "data inválida"
	cards = BuildCards(profiles, demands, opts())
	assert.False(t, cards[0].Stale)
	assert.False(t, cards[1].Stale)
}

type stubProfiles struct {
	list []profile.Profile
	err  error
}

func (s stubProfiles) List(context.Context) ([]profile.Profile, error) { return s.list, s.err }

type stubDemands struct {
	list []demand.Demand
	err  error
}

func (s stubDemands) All(context.Context) ([]demand.Demand, error) { return s.list, s.err }

func TestServiceOverview(t *testing.T) {
	svc := NewService(
		stubProfiles{list: []profile.Profile{collaborator("Ana")}},
		stubDemands{list: []demand.Demand{{AssignedTo: "Ana", Meta: 2}}},
		48*time.Hour,
		"https://painel.exemplo",
	)

	out, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://painel.exemplo", out.DashboardURL)
	require.Len(t, out.Cards, 1)
	assert.Equal(t, 2.0, out.Cards[0].Percent)
}

func TestServiceOverviewPropagatesErrors(t *testing.T) {
	boom := errors.New("planilha fora do ar")
	svc := NewService(stubProfiles{}, stubDemands{err: boom}, time.Hour, "")

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, boom)
}
