package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/logger"
	"millionaire-service/internal/metrics"

	"github.com/google/uuid"
)

// GameService contains the game use cases. Every operation on an existing game is
// gated to the game owner.
type GameService struct {
	games     GameRepository
	questions QuestionPicker
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option customizes a service.
type Option func(*GameService)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// WithRand replaces the random source.
func WithRand(rnd *rand.Rand) Option {
	return func(s *GameService) { s.rnd = rnd }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *GameService) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GameService) { s.metrics = m }
}

func NewGameService(games GameRepository, questions QuestionPicker, opts ...Option) *GameService {
	s := &GameService{
		games:     games,
		questions: questions,
		log:       logger.Discard(),
		now:       time.Now,
		newID:     uuid.NewString,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame starts a game for userID with one random question per level.
// If an unfinished game exists it is returned together with a *domain.GameInProgressError.
func (s *GameService) CreateGame(ctx context.Context, userID string) (*domain.Game, error) {
	if existing, err := s.inProgress(ctx, userID); err != nil || existing != nil {
		return existing, err
	}

	picks := make([]domain.Question, 0, domain.LevelCount)
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		q, err := s.questions.RandomByLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		picks = append(picks, q)
	}

	s.mu.Lock()
	game, err := domain.NewGame(s.newID(), userID, picks, s.now(), s.rnd, s.newID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.games.CreateGame(ctx, game); err != nil {
		if errors.Is(err, domain.ErrGameInProgress) {
			// Lost a race with a concurrent create.
			if existing, findErr := s.inProgress(ctx, userID); findErr != nil || existing != nil {
				return existing, findErr
			}
		}
		return nil, fmt.Errorf("create game: %w", err)
	}

	s.metrics.GameCreated()
	s.log.WithGame(game.ID, userID).Info("game started")
	return game, nil
}

func (s *GameService) inProgress(ctx context.Context, userID string) (*domain.Game, error) {
	existing, err := s.games.FindInProgress(ctx, userID)
	switch {
	case err == nil:
		return existing, &domain.GameInProgressError{GameID: existing.ID}
	case errors.Is(err, domain.ErrGameNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

// Game loads a game owned by userID.
func (s *GameService) Game(ctx context.Context, userID, gameID string) (*domain.Game, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return game, nil
}

// CurrentGame returns the unfinished game of userID, or ErrGameNotFound.
func (s *GameService) CurrentGame(ctx context.Context, userID string) (*domain.Game, error) {
	return s.games.FindInProgress(ctx, userID)
}

// Answer submits key for the current question.
func (s *GameService) Answer(ctx context.Context, userID, gameID, key string) (*domain.Game, domain.AnswerOutcome, error) {
	game, err := s.Game(ctx, userID, gameID)
	if err != nil {
		return nil, domain.AnswerOutcome{}, err
	}
	outcome, err := game.AnswerCurrentQuestion(key, s.now())
	if err != nil {
		return game, outcome, err
	}
	if outcome.Finished {
		err = s.finish(ctx, game)
	} else {
		err = s.games.UpdateGame(ctx, game)
	}
	return game, outcome, err
}

// TakeMoney banks the prize of the last passed level.
func (s *GameService) TakeMoney(ctx context.Context, userID, gameID string) (*domain.Game, error) {
	game, err := s.Game(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if err := game.TakeMoney(s.now()); err != nil {
		return game, err
	}
	return game, s.finish(ctx, game)
}

// UseHelp applies a help kind to the current question of the game.
func (s *GameService) UseHelp(ctx context.Context, userID, gameID, rawKind string) (*domain.Game, error) {
	kind, err := domain.ParseHelpKind(rawKind)
	if err != nil {
		return nil, err
	}
	game, err := s.Game(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	err = game.UseHelp(kind, s.now(), s.rnd)
	s.mu.Unlock()
	if err != nil {
		return game, err
	}

	if err := s.games.UpdateGame(ctx, game); err != nil {
		return game, fmt.Errorf("save help: %w", err)
	}
	s.metrics.HelpUsed(string(kind))
	s.log.WithGame(game.ID, userID).WithField("help", kind).Info("help used")
	return game, nil
}

func (s *GameService) finish(ctx context.Context, game *domain.Game) error {
	if err := s.games.FinishGame(ctx, game); err != nil {
		return fmt.Errorf("finish game: %w", err)
	}
	status := game.Status()
	s.metrics.GameFinished(string(status), game.Prize)
	s.log.WithGame(game.ID, game.UserID).
		WithField("status", status).
		WithField("prize", game.Prize).
		Info("game finished")
	return nil
}
