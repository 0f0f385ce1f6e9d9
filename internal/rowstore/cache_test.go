package rowstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedServesReadsUntilWrite(t *testing.T) {
	ctx := context.Background()
	base := &countingStore{Memory: NewMemory()}
	base.Seed("Perfil", []string{"Atendente"}, map[string]string{"Atendente": "Ana"})

	store := NewCached(base, NewMemoryCache(), time.Minute)

	_, err := store.ReadRows(ctx, "Perfil")
	require.NoError(t, err)
	tbl, err := store.ReadRows(ctx, "Perfil")
	require.NoError(t, err)
	assert.Equal(t, 1, base.reads)
	require.Len(t, tbl.Rows, 1)

	require.NoError(t, store.AppendRow(ctx, "Perfil", map[string]string{"Atendente": "Bruno"}, nil))
	tbl, err = store.ReadRows(ctx, "Perfil")
	require.NoError(t, err)
	assert.Equal(t, 2, base.reads)
	assert.Len(t, tbl.Rows, 2)
}

func TestCachedReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	base.Seed("Perfil", []string{"Atendente"}, map[string]string{"Atendente": "Ana"})
	store := NewCached(base, NewMemoryCache(), time.Minute)

	tbl, _ := store.ReadRows(ctx, "Perfil")
	tbl.Rows[0].Values["Atendente"] = "alterado"

	again, _ := store.ReadRows(ctx, "Perfil")
	assert.Equal(t, "Ana", again.Rows[0].Get("Atendente"))
}

func TestCachedDisabledWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	base := &countingStore{Memory: NewMemory()}
	store := NewCached(base, NewMemoryCache(), 0)

	_, _ = store.ReadRows(ctx, "Perfil")
	_, _ = store.ReadRows(ctx, "Perfil")
	assert.Equal(t, 2, base.reads)
}

// pausedStore segura a primeira leitura depois de tirar o retrato da aba.
type pausedStore struct {
	*Memory
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func (p *pausedStore) ReadRows(ctx context.Context, table string) (*Table, error) {
	t, err := p.Memory.ReadRows(ctx, table)
	p.once.Do(func() {
		close(p.reached)
		<-p.release
	})
	return t, err
}

func TestCachedReadAcrossWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	base := &pausedStore{Memory: NewMemory(), reached: make(chan struct{}), release: make(chan struct{})}
	base.Seed("Perfil", []string{"Atendente"}, map[string]string{"Atendente": "Ana"})
	store := NewCached(base, NewMemoryCache(), time.Minute)

	done := make(chan *Table)
	go func() {
		tbl, err := store.ReadRows(ctx, "Perfil")
		assert.NoError(t, err)
		done <- tbl
	}()

	<-base.reached
	require.NoError(t, store.AppendRow(ctx, "Perfil", map[string]string{"Atendente": "Bruno"}, nil))
	close(base.release)
	assert.Len(t, (<-done).Rows, 1)

	tbl, err := store.ReadRows(ctx, "Perfil")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestCachedInvalidatesWithCanceledContext(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	base := NewMemory()
	base.Seed("Perfil", []string{"Atendente"}, map[string]string{"Atendente": "Ana"})
	store := NewCached(base, NewRedisCache(client), time.Minute)

	_, err := store.ReadRows(context.Background(), "Perfil")
	require.NoError(t, err)
	require.True(t, s.Exists("planilha:Perfil"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, store.AppendRow(ctx, "Perfil", map[string]string{"Atendente": "Bruno"}, nil))
	assert.False(t, s.Exists("planilha:Perfil"))

	tbl, err := store.ReadRows(context.Background(), "Perfil")
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	cache.Set(ctx, "Perfil", &Table{Columns: []string{"Atendente"}}, 5*time.Second)
	_, ok := cache.Get(ctx, "Perfil")
	assert.True(t, ok)

	now = now.Add(5 * time.Second)
	_, ok = cache.Get(ctx, "Perfil")
	assert.False(t, ok)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	opts, err := redis.ParseURL("redis://" + s.Addr())
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	cache := NewRedisCache(client)
	want := &Table{
		Columns: []string{"ID"},
		Rows:    []Row{{Ref: 2, Values: map[string]string{"ID": "EAL000001/2025"}}},
	}
	cache.Set(ctx, "Registro de Demandas", want, time.Minute)
	assert.True(t, s.Exists("planilha:Registro de Demandas"))

	got, ok := cache.Get(ctx, "Registro de Demandas")
	require.True(t, ok)
	assert.Equal(t, want, got)

	s.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, "Registro de Demandas")
	assert.False(t, ok)

	cache.Set(ctx, "Perfil", want, time.Minute)
	cache.Invalidate(ctx, "Perfil")
	_, ok = cache.Get(ctx, "Perfil")
	assert.False(t, ok)
}

func TestRedisCacheFailureIsMiss(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	cache := NewRedisCache(client)

	s.Close()
	_, ok := cache.Get(context.Background(), "Perfil")
	assert.False(t, ok)
}
