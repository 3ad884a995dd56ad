package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"festquiz/internal/app"
	"festquiz/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// QuestionCache keeps fetched question batches per query for a TTL, so
// repeated starts do not hit a rate-limited upstream. Concurrent misses for
// the same query share one upstream call.
type QuestionCache struct {
	source app.QuestionSource
	ttl    time.Duration
	clock  clockwork.Clock
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedBatch
}

type cachedBatch struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source app.QuestionSource, ttl time.Duration) *QuestionCache {
	return NewQuestionCacheWithClock(source, ttl, clockwork.NewRealClock())
}

// NewQuestionCacheWithClock allows deterministic expiry in tests.
func NewQuestionCacheWithClock(source app.QuestionSource, ttl time.Duration, clock clockwork.Clock) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(clock.Now().UnixNano())),
		cache:  make(map[string]cachedBatch),
	}
}

func (c *QuestionCache) FetchQuestions(ctx context.Context, query domain.Query) ([]domain.Question, error) {
	key := query.Key()
	if questions, ok := c.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if questions, ok := c.lookup(key); ok {
			return questions, nil
		}

		questions, err := c.source.FetchQuestions(ctx, query)
		if err != nil {
			return nil, err
		}
		// Empty batches are not cached so the caller can retry immediately.
		if len(questions) > 0 && c.ttl > 0 {
			expiresAt := c.clock.Now().Add(c.ttlWithJitter())
			c.mu.Lock()
			c.cache[key] = cachedBatch{questions: questions, expiresAt: expiresAt}
			c.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *QuestionCache) lookup(key string) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock.Now()) {
		return nil, false
	}
	return cloneQuestions(entry.questions), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	copy(out, in)
	return out
}
