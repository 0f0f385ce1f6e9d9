package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList guarda os jti de tokens encerrados via logout.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RevocationKey monta a chave Redis de um token revogado.
func RevocationKey(jti string) string {
	return "revogado:" + jti
}

// RedisRevocations mantém a lista no Redis com expiração igual à do token.
type RedisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.client.Set(ctx, RevocationKey(jti), "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := r.client.Get(ctx, RevocationKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NoRevocations é usado quando não há Redis: logout apenas descarta o token
// no cliente.
type NoRevocations struct{}

func (NoRevocations) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }
