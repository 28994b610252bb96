package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"millionaire-service/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if _, err := s.db.NewInsert().Model(toUserRow(user)).Exec(ctx); err != nil {
		if pgCode(err) == codeUniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, "u.id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "u.email = ?", email)
}

func (s *Store) getUser(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateUser never touches the balance; see FinishGame.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.NewUpdate().
		Model(toUserRow(user)).
		Column("name", "password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	err := s.db.NewSelect().
		Model(&rows).
		Order("u.balance DESC", "u.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].toDomain())
	}
	return users, nil
}
