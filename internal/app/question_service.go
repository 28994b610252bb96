package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/logger"

	"github.com/google/uuid"
)

// ImportReport summarizes a bank import.
type ImportReport struct {
	Created    int
	Duplicates int
	Invalid    []error
}

// QuestionService manages the question bank.
type QuestionService struct {
	store QuestionStore
	log   *logger.Logger
	now   func() time.Time
}

func NewQuestionService(store QuestionStore, log *logger.Logger) *QuestionService {
	if log == nil {
		log = logger.Discard()
	}
	return &QuestionService{store: store, log: log, now: time.Now}
}

// Import validates and stores questions. Invalid records are reported, duplicates by
// text are skipped; any other store error aborts the import.
func (s *QuestionService) Import(ctx context.Context, questions []domain.Question) (ImportReport, error) {
	var report ImportReport
	for i := range questions {
		q := questions[i]
		q.Text = strings.TrimSpace(q.Text)
		if err := q.Validate(); err != nil {
			report.Invalid = append(report.Invalid, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		q.CreatedAt = s.now()

		err := s.store.CreateQuestion(ctx, &q)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, domain.ErrDuplicateQuestion):
			report.Duplicates++
		default:
			return report, fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	s.log.Entry().
		WithField("created", report.Created).
		WithField("duplicates", report.Duplicates).
		WithField("invalid", len(report.Invalid)).
		Info("questions imported")
	return report, nil
}

// MissingLevels lists levels with no question; a game cannot start while any exist.
func (s *QuestionService) MissingLevels(ctx context.Context) ([]int, error) {
	counts, err := s.store.CountByLevel(ctx)
	if err != nil {
		return nil, err
	}
	var missing []int
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		if counts[level] == 0 {
			missing = append(missing, level)
		}
	}
	return missing, nil
}
