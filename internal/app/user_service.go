package app

import (
	"context"

	"millionaire-service/internal/domain"
)

// UserService serves the read side of accounts: profiles and the leaderboard.
type UserService struct {
	users UserRepository
	games GameRepository
}

func NewUserService(users UserRepository, games GameRepository) *UserService {
	return &UserService{users: users, games: games}
}

// Profile returns a user and their games, newest first. Any signed-in or anonymous
// visitor may view it.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	games, err := s.games.ListByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{User: *user, Games: games}, nil
}

// Leaderboard lists users richest first.
func (s *UserService) Leaderboard(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// User loads one account.
func (s *UserService) User(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUser(ctx, userID)
}
