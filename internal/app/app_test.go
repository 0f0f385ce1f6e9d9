package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/atendimento/internal/auth"
	"github.com/gestaozabele/atendimento/internal/config"
	"github.com/gestaozabele/atendimento/internal/demand"
	"github.com/gestaozabele/atendimento/internal/profile"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "segredo-de-teste-com-mais-de-32-caracteres",
		JWTAccessTTL:   time.Hour,
		Store:          config.StoreConfig{Backend: "memory"},
		Location:       time.UTC,
		StaleThreshold: 48 * time.Hour,
	}
}

func TestNewMemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.IsType(t, auth.NoRevocations{}, a.Auth.Revocations())

	require.NoError(t, a.EnsureSchema(ctx))

	tbl, err := a.Store.ReadRows(ctx, profile.TableName)
	require.NoError(t, err)
	assert.Equal(t, profile.Columns(), tbl.Columns)

	tbl, err = a.Store.ReadRows(ctx, demand.TableName)
	require.NoError(t, err)
	assert.Equal(t, demand.Columns, tbl.Columns)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Redis)
	assert.IsType(t, &auth.RedisRevocations{}, a.Auth.Revocations())
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "excel"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
