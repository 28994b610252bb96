package app

import (
	"context"

	"millionaire-service/internal/domain"
)

// QuestionPicker draws a random bank question of a level (from cache/backing store).
// It returns a *domain.NoQuestionsError when the level is empty.
type QuestionPicker interface {
	RandomByLevel(ctx context.Context, level int) (domain.Question, error)
}

// QuestionStore persists the question bank.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, q *domain.Question) error
	CountByLevel(ctx context.Context) (map[int]int, error)
}

// GameRepository abstracts how games and their questions are stored.
type GameRepository interface {
	// CreateGame stores a new game with its questions. It returns ErrGameInProgress when
	// the owner already has an unfinished game.
	CreateGame(ctx context.Context, game *domain.Game) error
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	FindInProgress(ctx context.Context, userID string) (*domain.Game, error)
	// UpdateGame persists level, used helps and help payloads of an unfinished game.
	UpdateGame(ctx context.Context, game *domain.Game) error
	// FinishGame persists a finished game and credits its prize to the owner atomically.
	FinishGame(ctx context.Context, game *domain.Game) error
	// ListByUser returns the user's games, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Game, error)
}

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateUser persists name and password hash; the balance is only changed by FinishGame.
	UpdateUser(ctx context.Context, user *domain.User) error
	// ListUsers returns all users ordered by balance, richest first.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// FlashStore keeps transient notices per browser session until they are shown.
type FlashStore interface {
	Push(ctx context.Context, sessionID string, flash domain.Flash) error
	Pop(ctx context.Context, sessionID string) ([]domain.Flash, error)
}
