package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionPoolCache caches active question pools per group and degree with a TTL
// to avoid repeated store hits. Sampling happens on every request over the cached pool.
type QuestionPoolCache struct {
	loader app.QuestionRepository
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.Mutex
	cache map[string]cachedPool
	// gens is bumped by Invalidate; a load only caches if its generation still matches.
	gens map[string]uint64
}

type cachedPool struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionPoolCache(loader app.QuestionRepository, ttl time.Duration) *QuestionPoolCache {
	return &QuestionPoolCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
		gens:   make(map[string]uint64),
	}
}

func (c *QuestionPoolCache) ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error) {
	key := poolKey(groupID, degree)
	if pool, ok := c.lookup(key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if pool, ok := c.lookup(key); ok {
			return pool, nil
		}

		c.mu.Lock()
		gen := c.gens[key]
		c.mu.Unlock()

		pool, err := c.loader.ListActiveQuestions(ctx, groupID, degree)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[key] == gen {
			c.cache[key] = cachedPool{
				questions: pool,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached pool so the next read reloads it. Loads already in
// flight still answer their callers but are not cached.
func (c *QuestionPoolCache) Invalidate(_ context.Context, groupID string, degree int) error {
	key := poolKey(groupID, degree)
	c.mu.Lock()
	delete(c.cache, key)
	c.gens[key]++
	c.mu.Unlock()
	c.sf.Forget(key)
	return nil
}

func (c *QuestionPoolCache) lookup(key string) ([]domain.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func poolKey(groupID string, degree int) string {
	return groupID + ":" + strconv.Itoa(degree)
}

func (c *QuestionPoolCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations; callers hold mu
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
