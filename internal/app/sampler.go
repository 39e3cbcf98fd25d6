package app

import (
	"math/rand"
	"time"

	"challenge-quiz-service/internal/domain"
)

// Sampler draws questions uniformly without replacement.
// Every call builds its own generator from seed, so nothing is shared between requests.
type Sampler struct {
	seed func() int64
}

// NewSampler returns a sampler seeded per call. A nil seed uses the wall clock.
func NewSampler(seed func() int64) *Sampler {
	if seed == nil {
		seed = func() int64 { return time.Now().UnixNano() }
	}
	return &Sampler{seed: seed}
}

// Sample returns up to limit distinct questions from pool. The pool is left untouched.
func (s *Sampler) Sample(pool []domain.Question, limit int) ([]domain.Question, error) {
	if len(pool) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if limit > len(pool) {
		limit = len(pool)
	}
	if limit < 0 {
		limit = 0
	}

	rnd := rand.New(rand.NewSource(s.seed()))
	picked := make([]domain.Question, len(pool))
	copy(picked, pool)
	// partial Fisher-Yates: the first limit slots end up uniformly chosen
	for i := 0; i < limit; i++ {
		j := i + rnd.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:limit], nil
}
