package app_test

import (
	"errors"
	"testing"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/domain"
)

func samplePool(n int) []domain.Question {
	pool := make([]domain.Question, n)
	for i := range pool {
		pool[i] = domain.Question{ID: int64(i + 1)}
	}
	return pool
}

func TestSampleReturnsDistinctQuestions(t *testing.T) {
	sampler := app.NewSampler(nil)
	pool := samplePool(4)

	for i := 0; i < 20; i++ {
		got, err := sampler.Sample(pool, 3)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 questions, got %d", len(got))
		}
		seen := make(map[int64]bool)
		for _, q := range got {
			if seen[q.ID] {
				t.Fatalf("question %d returned twice: %+v", q.ID, got)
			}
			seen[q.ID] = true
		}
	}
}

func TestSampleClampsLimitToPool(t *testing.T) {
	got, err := app.NewSampler(nil).Sample(samplePool(4), 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected clamp to 4, got %d", len(got))
	}
}

func TestSampleEmptyPool(t *testing.T) {
	if _, err := app.NewSampler(nil).Sample(nil, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSampleIsReproducibleWithInjectedSeed(t *testing.T) {
	seed := func() int64 { return 42 }
	pool := samplePool(10)

	a, _ := app.NewSampler(seed).Sample(pool, 4)
	b, _ := app.NewSampler(seed).Sample(pool, 4)
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("expected identical draws for identical seeds, got %+v vs %+v", a, b)
		}
	}
	for i, q := range pool {
		if q.ID != int64(i+1) {
			t.Fatalf("sampling reordered the caller's pool: %+v", pool)
		}
	}
}

func TestSampleReseedsEveryCall(t *testing.T) {
	var next int64
	sampler := app.NewSampler(func() int64 { next++; return next })
	pool := samplePool(20)

	first, _ := sampler.Sample(pool, 5)
	differs := false
	for i := 0; i < 10 && !differs; i++ {
		again, _ := sampler.Sample(pool, 5)
		for j := range again {
			if again[j].ID != first[j].ID {
				differs = true
				break
			}
		}
	}
	if !differs {
		t.Fatalf("expected repeated calls to resample")
	}
}
