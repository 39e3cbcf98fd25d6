package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"challenge-quiz-service/internal/domain"
)

func TestQuestionPoolCacheCaches(t *testing.T) {
	loader := &countingLoader{Store: seededStore(t)}
	cache := NewQuestionPoolCache(loader, time.Minute)

	pool, err := cache.ListActiveQuestions(context.Background(), "group-1", 1)
	if err != nil {
		t.Fatalf("list pool: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(pool))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.ListActiveQuestions(context.Background(), "group-1", 1); err != nil {
		t.Fatalf("list pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	if _, err := cache.ListActiveQuestions(context.Background(), "group-1", 2); err != nil {
		t.Fatalf("list other degree: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected separate key per degree, loader calls %d", loader.calls)
	}
}

func TestQuestionPoolCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	loader := &countingLoader{Store: store}
	cache := NewQuestionPoolCache(loader, time.Minute)

	if _, err := cache.ListActiveQuestions(ctx, "group-1", 1); err != nil {
		t.Fatalf("list pool: %v", err)
	}
	if _, err := store.DeleteQuestion(ctx, 1); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if err := cache.Invalidate(ctx, "group-1", 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	pool, err := cache.ListActiveQuestions(ctx, "group-1", 1)
	if err != nil {
		t.Fatalf("list pool after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
	if len(pool) != 1 || pool[0].ID != 2 {
		t.Fatalf("expected only question 2 after delete, got %+v", pool)
	}
}

func TestQuestionPoolCacheExpires(t *testing.T) {
	loader := &countingLoader{Store: seededStore(t)}
	cache := NewQuestionPoolCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.ListActiveQuestions(context.Background(), "group-1", 1); err != nil {
		t.Fatalf("list pool: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.ListActiveQuestions(context.Background(), "group-1", 1); err != nil {
		t.Fatalf("list pool after ttl: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestQuestionPoolCacheDropsLoadRacingInvalidate(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)
	loader := &blockingLoader{Store: store, entered: make(chan struct{}), release: make(chan struct{})}
	cache := NewQuestionPoolCache(loader, time.Minute)

	done := make(chan []domain.Question)
	go func() {
		pool, err := cache.ListActiveQuestions(ctx, "group-1", 1)
		if err != nil {
			t.Errorf("first load: %v", err)
		}
		done <- pool
	}()

	<-loader.entered
	if _, err := store.DeleteQuestion(ctx, 1); err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if err := cache.Invalidate(ctx, "group-1", 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	<-done

	pool, err := cache.ListActiveQuestions(ctx, "group-1", 1)
	if err != nil {
		t.Fatalf("list pool after invalidate: %v", err)
	}
	if len(pool) != 1 || pool[0].ID != 2 {
		t.Fatalf("expected stale load to be discarded, got %+v", pool)
	}
	if calls := loader.calls.Load(); calls != 2 {
		t.Fatalf("expected a fresh load, loader calls %d", calls)
	}
}

// blockingLoader holds its first load until release is closed.
type blockingLoader struct {
	*Store
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (l *blockingLoader) ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error) {
	pool, err := l.Store.ListActiveQuestions(ctx, groupID, degree)
	if l.calls.Add(1) == 1 {
		close(l.entered)
		<-l.release
	}
	return pool, err
}

type countingLoader struct {
	*Store
	calls int
}

func (l *countingLoader) ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error) {
	l.calls++
	return l.Store.ListActiveQuestions(ctx, groupID, degree)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore()
	for _, degree := range []int{1, 1, 2} {
		_, err := store.CreateQuestion(context.Background(), domain.Question{
			GroupID: "group-1",
			UserID:  "user-1",
			Type:    domain.QuestionInput,
			Degree:  degree,
			Text:    "What is 2 + 2?",
			Correct: "4",
		})
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	return store
}
