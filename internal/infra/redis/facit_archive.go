package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"festquiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	facitListKey = "festquiz:facits"
	facitListMax = 1000
)

// FacitArchive keeps finished sessions in Redis.
//   - each facit is a JSON string at festquiz:facit:{id}, expiring after ttl (0 keeps it)
//   - festquiz:facits is a capped list of IDs, newest first
type FacitArchive struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFacitArchive(client *redis.Client, ttl time.Duration) *FacitArchive {
	return &FacitArchive{client: client, ttl: ttl}
}

func (a *FacitArchive) Save(ctx context.Context, facit domain.Facit) error {
	data, err := json.Marshal(facit)
	if err != nil {
		return err
	}
	pipe := a.client.TxPipeline()
	pipe.Set(ctx, a.key(facit.ID), data, a.ttl)
	pipe.LRem(ctx, facitListKey, 0, facit.ID)
	pipe.LPush(ctx, facitListKey, facit.ID)
	pipe.LTrim(ctx, facitListKey, 0, facitListMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save facit %s: %w", facit.ID, err)
	}
	return nil
}

func (a *FacitArchive) Get(ctx context.Context, id string) (domain.Facit, error) {
	data, err := a.client.Get(ctx, a.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Facit{}, domain.ErrFacitNotFound
	}
	if err != nil {
		return domain.Facit{}, err
	}
	var facit domain.Facit
	if err := json.Unmarshal(data, &facit); err != nil {
		return domain.Facit{}, fmt.Errorf("decode facit %s: %w", id, err)
	}
	return facit, nil
}

// Recent returns up to limit facits, newest first. Expired entries are skipped.
func (a *FacitArchive) Recent(ctx context.Context, limit int) ([]domain.Facit, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := a.client.LRange(ctx, facitListKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Facit{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = a.key(id)
	}
	values, err := a.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Facit, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var facit domain.Facit
		if err := json.Unmarshal([]byte(raw), &facit); err != nil {
			continue
		}
		out = append(out, facit)
	}
	return out, nil
}

func (a *FacitArchive) key(id string) string {
	return "festquiz:facit:" + id
}
