package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"
	"time"

	"challenge-quiz-service/internal/app"
	"challenge-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var errStalePool = errors.New("question pool invalidated during load")

// QuestionPoolCache caches active question pools in Redis (hash per group+degree) and
// falls back to a loader on cache miss.
// Pools are stored as: HSET questions:{groupID}:{degree} {questionID} {question JSON}
// Empty pools are not cached; Redis drops empty hashes anyway.
// questions:{groupID}:{degree}:gen holds the generation bumped by every invalidation.
type QuestionPoolCache struct {
	client *redis.Client
	loader app.QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionPoolCache(client *redis.Client, loader app.QuestionRepository, ttl time.Duration) *QuestionPoolCache {
	return &QuestionPoolCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionPoolCache) ListActiveQuestions(ctx context.Context, groupID string, degree int) ([]domain.Question, error) {
	key := c.poolKey(groupID, degree)

	if pool, ok := c.fromCache(ctx, key); ok {
		return pool, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := c.fromCache(ctx, key); ok {
			return pool, nil
		}

		gen, genErr := c.generation(ctx, key)
		pool, err := c.loader.ListActiveQuestions(ctx, groupID, degree)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 || genErr != nil {
			return pool, nil
		}

		fields := make(map[string]interface{}, len(pool))
		for _, q := range pool {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("marshal question %d: %w", q.ID, err)
			}
			fields[strconv.FormatInt(q.ID, 10)] = raw
		}
		// best-effort: a failed or stale write only costs another load
		_ = c.store(ctx, key, gen, fields)

		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached pool and bumps its generation so loads already in
// flight, on this or any other instance, do not write their snapshot back.
func (c *QuestionPoolCache) Invalidate(ctx context.Context, groupID string, degree int) error {
	key := c.poolKey(groupID, degree)
	c.sf.Forget(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, generationKey(key))
		return nil
	})
	return err
}

// store writes the pool only if the generation read before loading is still current.
func (c *QuestionPoolCache) store(ctx context.Context, key string, gen int64, fields map[string]interface{}) error {
	genKey := generationKey(key)
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStalePool
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields)
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			return nil
		})
		return err
	}, genKey)
}

func (c *QuestionPoolCache) generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *QuestionPoolCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	pool, err := decodePool(fields)
	if err != nil {
		return nil, false
	}
	return pool, true
}

func (c *QuestionPoolCache) poolKey(groupID string, degree int) string {
	return "questions:" + groupID + ":" + strconv.Itoa(degree)
}

func generationKey(poolKey string) string {
	return poolKey + ":gen"
}

func decodePool(fields map[string]string) ([]domain.Question, error) {
	pool := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, err
		}
		pool = append(pool, q)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

func (c *QuestionPoolCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
