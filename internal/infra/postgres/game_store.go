package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"millionaire-service/internal/domain"

	"github.com/uptrace/bun"
)

// Store persists users, games and the question bank with bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateGame(ctx context.Context, game *domain.Game) error {
	row := toGameRow(game)
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			switch pgCode(err) {
			case codeUniqueViolation:
				return domain.ErrGameInProgress
			case codeForeignKeyViolation:
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("insert game: %w", err)
		}
		if len(row.Questions) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&row.Questions).Exec(ctx); err != nil {
			return fmt.Errorf("insert game questions: %w", err)
		}
		return nil
	})
}

func (s *Store) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := new(gameRow)
	err := s.selectGame(row).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindInProgress(ctx context.Context, userID string) (*domain.Game, error) {
	row := new(gameRow)
	err := s.selectGame(row).
		Where("g.user_id = ?", userID).
		Where("g.finished_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find game in progress: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) selectGame(row *gameRow) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(row).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("gq.level ASC")
		}).
		Relation("Questions.Question")
}

func (s *Store) UpdateGame(ctx context.Context, game *domain.Game) error {
	row := toGameRow(game)
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := updateGameRow(ctx, tx, row); err != nil {
			return err
		}
		return updateHelps(ctx, tx, row.Questions)
	})
}

// FinishGame stores the final state and credits the prize in one transaction. The
// finished_at IS NULL guard makes a second finish fail instead of paying twice.
func (s *Store) FinishGame(ctx context.Context, game *domain.Game) error {
	row := toGameRow(game)
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := updateGameRow(ctx, tx, row); err != nil {
			return err
		}
		if err := updateHelps(ctx, tx, row.Questions); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*userRow)(nil)).
			Set("balance = balance + ?", row.Prize).
			Set("updated_at = ?", row.UpdatedAt).
			Where("id = ?", row.UserID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}

func updateGameRow(ctx context.Context, tx bun.Tx, row *gameRow) error {
	res, err := tx.NewUpdate().
		Model(row).
		Column("current_level", "is_failed", "finished_at", "prize",
			"audience_help_used", "fifty_fifty_used", "friend_call_used", "updated_at").
		WherePK().
		Where("finished_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		exists, err := tx.NewSelect().Model((*gameRow)(nil)).Where("id = ?", row.ID).Exists(ctx)
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if !exists {
			return domain.ErrGameNotFound
		}
		return domain.ErrGameFinished
	}
	return nil
}

func updateHelps(ctx context.Context, tx bun.Tx, questions []*gameQuestionRow) error {
	for _, q := range questions {
		if q.Help.Empty() {
			continue
		}
		if _, err := tx.NewUpdate().Model(q).Column("help").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update help: %w", err)
		}
	}
	return nil
}

// ListByUser returns the user's games, newest first, without their questions.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]domain.Game, error) {
	var rows []gameRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("g.user_id = ?", userID).
		Order("g.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games := make([]domain.Game, 0, len(rows))
	for i := range rows {
		games = append(games, *rows[i].toDomain())
	}
	return games, nil
}
