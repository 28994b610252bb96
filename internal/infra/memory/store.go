package memory

import (
	"context"
	"sort"
	"sync"

	"millionaire-service/internal/domain"
)

// Store is an in-memory implementation of app.GameRepository and app.UserRepository.
// Both live behind one lock so finishing a game and crediting its owner is atomic.
type Store struct {
	mu    sync.RWMutex
	games map[string]*domain.Game
	users map[string]*domain.User
}

func NewStore() *Store {
	return &Store{
		games: make(map[string]*domain.Game),
		users: make(map[string]*domain.User),
	}
}

func (s *Store) CreateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[game.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	if s.inProgressLocked(game.UserID) != nil {
		return domain.ErrGameInProgress
	}
	s.games[game.ID] = cloneGame(game)
	return nil
}

func (s *Store) GetGame(_ context.Context, id string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return cloneGame(game), nil
}

func (s *Store) FindInProgress(_ context.Context, userID string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if game := s.inProgressLocked(userID); game != nil {
		return cloneGame(game), nil
	}
	return nil, domain.ErrGameNotFound
}

func (s *Store) UpdateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.games[game.ID]
	if !ok {
		return domain.ErrGameNotFound
	}
	if stored.Finished() {
		return domain.ErrGameFinished
	}
	s.games[game.ID] = cloneGame(game)
	return nil
}

func (s *Store) FinishGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.games[game.ID]
	if !ok {
		return domain.ErrGameNotFound
	}
	if stored.Finished() {
		return domain.ErrGameFinished
	}
	user, ok := s.users[game.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	s.games[game.ID] = cloneGame(game)
	user.Balance += game.Prize
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []domain.Game
	for _, game := range s.games {
		if game.UserID == userID {
			games = append(games, *cloneGame(game))
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Balance != users[j].Balance {
			return users[i].Balance > users[j].Balance
		}
		return users[i].Name < users[j].Name
	})
	return users, nil
}

func (s *Store) inProgressLocked(userID string) *domain.Game {
	for _, game := range s.games {
		if game.UserID == userID && !game.Finished() {
			return game
		}
	}
	return nil
}

func cloneGame(g *domain.Game) *domain.Game {
	c := *g
	if g.FinishedAt != nil {
		at := *g.FinishedAt
		c.FinishedAt = &at
	}
	c.HelpsUsed = append(domain.HelpSet(nil), g.HelpsUsed...)
	c.Questions = make([]domain.GameQuestion, len(g.Questions))
	for i, gq := range g.Questions {
		c.Questions[i] = gq
		if gq.Help.Audience != nil {
			c.Questions[i].Help.Audience = make(map[string]int, len(gq.Help.Audience))
			for k, v := range gq.Help.Audience {
				c.Questions[i].Help.Audience[k] = v
			}
		}
		c.Questions[i].Help.FiftyFifty = append([]string(nil), gq.Help.FiftyFifty...)
	}
	return &c
}
