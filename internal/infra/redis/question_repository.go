package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"millionaire-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the questions of a level from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionRepository caches level pools in Redis and falls back to a loader on cache miss.
// Each level is stored as a set of JSON-encoded questions:
//
//	SADD questions:level:{level} {json}
//
// and a random member is drawn with SRANDMEMBER.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) RandomByLevel(ctx context.Context, level int) (domain.Question, error) {
	key := levelKey(level)

	raw, err := r.client.SRandMember(ctx, key).Result()
	if err == nil {
		return decodeQuestion(raw)
	}
	if !errors.Is(err, redis.Nil) {
		return domain.Question{}, fmt.Errorf("draw question: %w", err)
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.SRandMember(ctx, key).Result(); err == nil {
			return decodeQuestion(raw)
		}

		pool, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return domain.Question{}, err
		}
		if len(pool) == 0 {
			return domain.Question{}, &domain.NoQuestionsError{Level: level}
		}

		members := make([]interface{}, 0, len(pool))
		for _, q := range pool {
			data, err := json.Marshal(q)
			if err != nil {
				return domain.Question{}, fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			members = append(members, data)
		}
		pipe := r.client.Pipeline()
		pipe.SAdd(ctx, key, members...)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// A failed cache fill only costs another trip to the loader.
		_, _ = pipe.Exec(ctx)

		return pool[r.intn(len(pool))], nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

// Invalidate drops the cached pools of every level.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	keys := make([]string, 0, domain.LevelCount)
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		keys = append(keys, levelKey(level))
	}
	return r.client.Del(ctx, keys...).Err()
}

func levelKey(level int) string {
	return "questions:level:" + strconv.Itoa(level)
}

func decodeQuestion(raw string) (domain.Question, error) {
	var q domain.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Question{}, fmt.Errorf("decode cached question: %w", err)
	}
	return q, nil
}

func (r *QuestionRepository) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
