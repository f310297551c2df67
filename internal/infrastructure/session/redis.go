// Package session implements gateway.SessionStore on Redis and in memory.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
	"github.com/seronsenapati/STAYLO/pkg/helpers"
)

const keyPrefix = "session:"

// Redis stores each session as a JSON document under session:<id>. Every
// save refreshes the TTL.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, id string) (*gateway.Session, error) {
	if id == "" {
		return nil, gateway.ErrSessionNotFound
	}
	var s gateway.Session
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, keyPrefix+id, &s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gateway.ErrSessionNotFound
	}
	return &s, nil
}

func (r *Redis) Save(ctx context.Context, s *gateway.Session) error {
	if s.ID == "" {
		return errors.New("session id required")
	}
	return helpers.RedisSetJSON(ctx, r.rdb, keyPrefix+s.ID, s, r.ttl)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return helpers.RedisDel(ctx, r.rdb, keyPrefix+id)
}

var _ gateway.SessionStore = (*Redis)(nil)
