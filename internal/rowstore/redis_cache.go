package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache compartilha o cache de leitura entre instâncias da API.
// Falhas do Redis viram cache miss e são apenas registradas em log.
type RedisCache struct {
	client redisCommander
	prefix string
}

// NewRedisCache cria cache com prefixo "planilha:".
func NewRedisCache(client redisCommander) *RedisCache {
	return &RedisCache{client: client, prefix: "planilha:"}
}

func (c *RedisCache) key(table string) string {
	return c.prefix + table
}

func (c *RedisCache) Get(ctx context.Context, table string) (*Table, bool) {
	raw, err := c.client.Get(ctx, c.key(table)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("table", table).Msg("cache redis: leitura falhou")
		}
		return nil, false
	}

	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("cache redis: conteúdo inválido")
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, table string, t *Table, ttl time.Duration) {
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(table), payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("cache redis: gravação falhou")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, table string) {
	if err := c.client.Del(ctx, c.key(table)).Err(); err != nil {
		log.Warn().Err(err).Str("table", table).Msg("cache redis: invalidação falhou")
	}
}
