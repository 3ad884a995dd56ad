package cli

import (
	"context"
	"fmt"
	"time"

	"festquiz/internal/app"
	"festquiz/internal/config"
	"festquiz/internal/infra/memory"
	pgarchive "festquiz/internal/infra/postgres"
	redisinfra "festquiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultFacitTTL = 30 * 24 * time.Hour

// backends holds the optional storage connections named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}
	return b, nil
}

func (b *backends) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// archive prefers Postgres, then Redis, then process memory.
func (b *backends) archive(cfg config.Config) (app.FacitArchive, bool) {
	switch {
	case b.pool != nil:
		return pgarchive.NewFacitArchive(b.pool), true
	case b.redis != nil:
		return redisinfra.NewFacitArchive(b.redis, config.TTLDuration(cfg.Redis.TTL, defaultFacitTTL)), true
	default:
		return memory.NewFacitArchive(), false
	}
}

// questionSource wraps upstream in a cache when cache.ttl is set.
func (b *backends) questionSource(cfg config.Config, upstream app.QuestionSource) app.QuestionSource {
	ttl := config.TTLDuration(cfg.Cache.TTL, 0)
	if ttl <= 0 {
		return upstream
	}
	if b.redis != nil {
		log.Debug().Dur("ttl", ttl).Msg("caching questions in redis")
		return redisinfra.NewQuestionCache(b.redis, upstream, ttl)
	}
	log.Debug().Dur("ttl", ttl).Msg("caching questions in memory")
	return memory.NewQuestionCache(upstream, ttl)
}
