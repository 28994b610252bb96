package memory

import (
	"context"
	"sort"
	"sync"

	"millionaire-service/internal/domain"
)

// QuestionBank is an in-memory question store (useful for tests/demos). It doubles as a
// QuestionLoader for QuestionRepository.
type QuestionBank struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	texts     map[string]string
}

func NewQuestionBank(questions ...domain.Question) *QuestionBank {
	b := &QuestionBank{
		questions: make(map[string]domain.Question),
		texts:     make(map[string]string),
	}
	for i := range questions {
		_ = b.CreateQuestion(context.Background(), &questions[i])
	}
	return b
}

func (b *QuestionBank) CreateQuestion(_ context.Context, q *domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.texts[q.Text]; ok {
		return domain.ErrDuplicateQuestion
	}
	b.questions[q.ID] = *q
	b.texts[q.Text] = q.ID
	return nil
}

func (b *QuestionBank) CountByLevel(_ context.Context) (map[int]int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := make(map[int]int)
	for _, q := range b.questions {
		counts[q.Level]++
	}
	return counts, nil
}

// LoadLevel returns the questions of level ordered by id.
func (b *QuestionBank) LoadLevel(_ context.Context, level int) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var pool []domain.Question
	for _, q := range b.questions {
		if q.Level == level {
			pool = append(pool, q)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// Get returns a question by id.
func (b *QuestionBank) Get(id string) (domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.questions[id]
	return q, ok
}
