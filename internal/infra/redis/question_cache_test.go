package redis

import (
	"context"
	"testing"
	"time"

	"festquiz/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	source := &countingSource{questions: sampleQuestions()}
	cache := NewQuestionCache(client, source, time.Minute)
	query := domain.Query{Amount: 2, Category: "9", Difficulty: "easy"}

	questions, err := cache.FetchQuestions(context.Background(), query)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 1 || len(questions) != 2 {
		t.Fatalf("expected one upstream call with 2 questions, got calls=%d len=%d", source.calls, len(questions))
	}
	if !mr.Exists("festquiz:questions:2:9:easy") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("festquiz:questions:2:9:easy"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}

	// Second call should hit cache, source not incremented.
	cached, _ := cache.FetchQuestions(context.Background(), query)
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
	if cached[1].CorrectAnswer != "Oslo" {
		t.Fatalf("unexpected cached batch %+v", cached)
	}

	mr.FastForward(2 * time.Minute)
	_, _ = cache.FetchQuestions(context.Background(), query)
	if source.calls != 2 {
		t.Fatalf("expected refetch after expiry, source calls=%d", source.calls)
	}
}

func TestQuestionCacheKeepsMalformedEntries(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := &countingSource{questions: []domain.Question{
		{Text: "Q1", CorrectAnswer: "a", IncorrectAnswers: []string{"b"}},
		{Text: "Q2", CorrectAnswer: "a"},
	}}
	cache := NewQuestionCache(newClient(mr), source, time.Minute)

	_, _ = cache.FetchQuestions(context.Background(), domain.Query{Amount: 2})
	cached, err := cache.FetchQuestions(context.Background(), domain.Query{Amount: 2})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.calls)
	}
	if !cached[0].Valid() || cached[1].Valid() {
		t.Fatalf("validity lost in cache round trip: %+v", cached)
	}
}

type countingSource struct {
	calls     int
	questions []domain.Question
}

func (s *countingSource) FetchQuestions(_ context.Context, _ domain.Query) ([]domain.Question, error) {
	s.calls++
	return s.questions, nil
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5", "22"}},
		{Text: "Capital of Norway?", CorrectAnswer: "Oslo", IncorrectAnswers: []string{"Bergen", "Stockholm", "Trondheim"}},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
