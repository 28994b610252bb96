package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"millionaire-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the questions of a level from a backing store.
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionRepository caches level pools with TTL to avoid repeated DB hits and picks
// a random question from the cached pool.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedLevel
}

type cachedLevel struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedLevel),
	}
}

// RandomByLevel returns a uniformly random question of level.
func (r *QuestionRepository) RandomByLevel(ctx context.Context, level int) (domain.Question, error) {
	pool, err := r.pool(ctx, level)
	if err != nil {
		return domain.Question{}, err
	}
	if len(pool) == 0 {
		return domain.Question{}, &domain.NoQuestionsError{Level: level}
	}
	r.rndMu.Lock()
	i := r.rnd.Intn(len(pool))
	r.rndMu.Unlock()
	return pool[i], nil
}

// Invalidate drops every cached level.
func (r *QuestionRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[int]cachedLevel)
	r.mu.Unlock()
}

func (r *QuestionRepository) pool(ctx context.Context, level int) ([]domain.Question, error) {
	if pool, ok := r.cached(level); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(level), func() (interface{}, error) {
		if pool, ok := r.cached(level); ok {
			return pool, nil
		}
		pool, err := r.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		// Empty levels are not cached so a fresh import is picked up at once.
		if len(pool) > 0 {
			r.mu.Lock()
			r.cache[level] = cachedLevel{questions: pool, expiresAt: r.clock().Add(r.ttlWithJitter())}
			r.mu.Unlock()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) cached(level int) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[level]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
