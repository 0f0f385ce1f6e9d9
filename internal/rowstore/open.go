package rowstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/atendimento/internal/db"
)

// Backends suportados.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options define como abrir o store.
type Options struct {
	Backend  string
	Sheets   SheetsConfig
	DBDSN    string
	Redis    *redis.Client
	CacheTTL time.Duration
}

// Open monta o backend escolhido com métricas e cache de leitura. O cache usa
// Redis quando disponível e memória local caso contrário.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	var (
		base    Store
		cleanup = func() {}
	)

	switch opts.Backend {
	case BackendSheets, "":
		s, err := NewSheets(ctx, opts.Sheets)
		if err != nil {
			return nil, nil, err
		}
		base = s
	case BackendPostgres:
		pool, err := db.NewPool(ctx, opts.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db: %w", err)
		}
		pg, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		base = pg
		cleanup = pool.Close
	case BackendMemory:
		base = NewMemory()
	default:
		return nil, nil, fmt.Errorf("planilha: backend desconhecido %q", opts.Backend)
	}

	backend := opts.Backend
	if backend == "" {
		backend = BackendSheets
	}

	var cache Cache = NewMemoryCache()
	if opts.Redis != nil {
		cache = NewRedisCache(opts.Redis)
	}

	log.Info().Str("backend", backend).Dur("cache_ttl", opts.CacheTTL).Bool("redis", opts.Redis != nil).Msg("armazenamento pronto")
	return NewCached(NewInstrumented(base, backend), cache, opts.CacheTTL), cleanup, nil
}
