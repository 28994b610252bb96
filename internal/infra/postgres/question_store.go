package postgres

import (
	"context"
	"fmt"

	"millionaire-service/internal/domain"
)

func (s *Store) CreateQuestion(ctx context.Context, q *domain.Question) error {
	if _, err := s.db.NewInsert().Model(toQuestionRow(q)).Exec(ctx); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrDuplicateQuestion
		}
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *Store) CountByLevel(ctx context.Context) (map[int]int, error) {
	var rows []struct {
		Level int `bun:"level"`
		Count int `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*questionRow)(nil)).
		ColumnExpr("q.level AS level").
		ColumnExpr("count(*) AS count").
		Group("q.level").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	counts := make(map[int]int, len(rows))
	for _, r := range rows {
		counts[r.Level] = r.Count
	}
	return counts, nil
}
