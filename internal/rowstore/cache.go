package rowstore

import (
	"context"
	"sync"
	"time"
)

// Cache guarda leituras completas de uma aba por um curto período.
type Cache interface {
	Get(ctx context.Context, table string) (*Table, bool)
	Set(ctx context.Context, table string, t *Table, ttl time.Duration)
	Invalidate(ctx context.Context, table string)
}

// MemoryCache mantém as abas em memória com expiração simples.
type MemoryCache struct {
	entries sync.Map
	now     func() time.Time
}

type cachedTable struct {
	table    *Table
	expireAt time.Time
}

// NewMemoryCache cria o cache em memória do processo.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, table string) (*Table, bool) {
	v, ok := c.entries.Load(table)
	if !ok {
		return nil, false
	}
	entry := v.(cachedTable)
	if !c.now().Before(entry.expireAt) {
		c.entries.Delete(table)
		return nil, false
	}
	return entry.table.Clone(), true
}

func (c *MemoryCache) Set(ctx context.Context, table string, t *Table, ttl time.Duration) {
	c.entries.Store(table, cachedTable{table: t.Clone(), expireAt: c.now().Add(ttl)})
}

func (c *MemoryCache) Invalidate(ctx context.Context, table string) {
	c.entries.Delete(table)
}

// Cached serve leituras do cache e o invalida a cada escrita na mesma aba.
// Uma leitura que cruza uma escrita não repovoa o cache com a versão antiga.
type Cached struct {
	next  Store
	cache Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCached envolve next com cache de leitura. ttl <= 0 desativa o cache.
func NewCached(next Store, cache Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, generations: make(map[string]uint64)}
}

func (c *Cached) generation(table string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[table]
}

func (c *Cached) ReadRows(ctx context.Context, table string) (*Table, error) {
	if c.ttl <= 0 {
		return c.next.ReadRows(ctx, table)
	}
	if t, ok := c.cache.Get(ctx, table); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return t, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	gen := c.generation(table)
	t, err := c.next.ReadRows(ctx, table)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[table] == gen {
		c.cache.Set(ctx, table, t, c.ttl)
	}
	c.mu.Unlock()
	return t.Clone(), nil
}

// invalidate avança a geração da aba e descarta a entrada. Roda mesmo com a
// requisição cancelada para não deixar uma entrada antiga viva até o TTL.
func (c *Cached) invalidate(ctx context.Context, table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[table]++
	c.cache.Invalidate(context.WithoutCancel(ctx), table)
}

func (c *Cached) AppendRow(ctx context.Context, table string, values map[string]string, fallbackColumns []string) error {
	defer c.invalidate(ctx, table)
	return c.next.AppendRow(ctx, table, values, fallbackColumns)
}

func (c *Cached) UpdateRow(ctx context.Context, table string, ref RowRef, values map[string]string) error {
	defer c.invalidate(ctx, table)
	return c.next.UpdateRow(ctx, table, ref, values)
}

func (c *Cached) DeleteRow(ctx context.Context, table string, ref RowRef) error {
	defer c.invalidate(ctx, table)
	return c.next.DeleteRow(ctx, table, ref)
}

func (c *Cached) EnsureColumn(ctx context.Context, table, column string) error {
	defer c.invalidate(ctx, table)
	return c.next.EnsureColumn(ctx, table, column)
}
