package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newClient(mr)

	loader := &countingLoader{QuestionLoader: memory.NewQuestionBank(sampleQuestions(3)...)}
	repo := NewQuestionRepository(client, loader, time.Minute)

	q, err := repo.RandomByLevel(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Level)
	assert.Equal(t, 1, loader.calls)

	members, err := mr.Members("questions:level:5")
	require.NoError(t, err)
	assert.Len(t, members, 3)
	assert.True(t, mr.TTL("questions:level:5") >= time.Minute)

	// Second call should hit cache, loader not incremented.
	q, err = repo.RandomByLevel(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Level)
	assert.NotEmpty(t, q.Answer1)
	assert.Equal(t, 1, loader.calls)
}

func TestQuestionRepositoryEmptyLevel(t *testing.T) {
	mr := miniredis.RunT(t)
	repo := NewQuestionRepository(newClient(mr), memory.NewQuestionBank(), time.Minute)

	_, err := repo.RandomByLevel(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrNoQuestionsForLevel)
	assert.False(t, mr.Exists("questions:level:2"))
}

func TestQuestionRepositoryInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	loader := &countingLoader{QuestionLoader: memory.NewQuestionBank(sampleQuestions(1)...)}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	_, err := repo.RandomByLevel(context.Background(), 0)
	require.NoError(t, err)
	require.NoError(t, repo.Invalidate(context.Background()))
	assert.False(t, mr.Exists("questions:level:0"))

	_, err = repo.RandomByLevel(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadLevel(ctx context.Context, level int) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadLevel(ctx, level)
}

func sampleQuestions(perLevel int) []domain.Question {
	var questions []domain.Question
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		for i := 0; i < perLevel; i++ {
			questions = append(questions, domain.Question{
				ID:      fmt.Sprintf("q-%02d-%d", level, i),
				Level:   level,
				Text:    fmt.Sprintf("Level %d question %d", level, i),
				Answer1: "right",
				Answer2: "wrong",
				Answer3: "wrong",
				Answer4: "wrong",
			})
		}
	}
	return questions
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
