package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// TimeLimit is the wall-clock budget of a game, counted from its creation.
const TimeLimit = time.Hour

// Status is the derived state of a game.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusFail       Status = "fail"
	StatusTimeout    Status = "timeout"
	StatusMoney      Status = "money"
)

// Terminal reports whether no further move is possible.
func (s Status) Terminal() bool {
	return s != StatusInProgress
}

// Label is the human readable status.
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusWon:
		return "won"
	case StatusFail:
		return "lost"
	case StatusTimeout:
		return "time is up"
	case StatusMoney:
		return "took the money"
	}
	return string(s)
}

// Game is one play-through of LevelCount questions.
type Game struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	CurrentLevel int            `json:"currentLevel"`
	IsFailed     bool           `json:"isFailed"`
	FinishedAt   *time.Time     `json:"finishedAt,omitempty"`
	Prize        int64          `json:"prize"`
	HelpsUsed    HelpSet        `json:"helpsUsed"`
	Questions    []GameQuestion `json:"questions"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// AnswerOutcome describes what an answer did to the game.
type AnswerOutcome struct {
	Correct       bool   `json:"correct"`
	CorrectKey    string `json:"correctKey"`
	CorrectAnswer string `json:"correctAnswer"`
	Finished      bool   `json:"finished"`
	TimedOut      bool   `json:"timedOut"`
}

// NewGame builds a fresh game from one question per level, ordered by level.
// newID generates the game question ids.
func NewGame(id, userID string, questions []Question, now time.Time, rnd *rand.Rand, newID func() string) (*Game, error) {
	if len(questions) != LevelCount {
		return nil, fmt.Errorf("%w: want %d questions, got %d", ErrInvalidGame, LevelCount, len(questions))
	}
	game := &Game{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Questions: make([]GameQuestion, 0, LevelCount),
	}
	for i, q := range questions {
		if q.Level != MinLevel+i {
			return nil, fmt.Errorf("%w: question %s has level %d at position %d", ErrInvalidGame, q.ID, q.Level, i)
		}
		game.Questions = append(game.Questions, NewGameQuestion(newID(), id, q, rnd))
	}
	return game, nil
}

// Finished reports whether the game reached a terminal state.
func (g *Game) Finished() bool {
	return g.FinishedAt != nil
}

// Status derives the state; priority is timeout, fail, won, money.
func (g *Game) Status() Status {
	if !g.Finished() {
		return StatusInProgress
	}
	switch {
	case g.IsFailed && g.FinishedAt.Sub(g.CreatedAt) > TimeLimit:
		return StatusTimeout
	case g.IsFailed:
		return StatusFail
	case g.CurrentLevel > MaxLevel:
		return StatusWon
	default:
		return StatusMoney
	}
}

// PreviousLevel is the last passed level, -1 before the first answer.
func (g *Game) PreviousLevel() int {
	return g.CurrentLevel - 1
}

// CurrentGameQuestion returns the question at the current level, nil after a win.
func (g *Game) CurrentGameQuestion() *GameQuestion {
	return g.questionAt(g.CurrentLevel)
}

// PreviousGameQuestion returns the last answered question, nil before the first answer.
func (g *Game) PreviousGameQuestion() *GameQuestion {
	return g.questionAt(g.PreviousLevel())
}

func (g *Game) questionAt(level int) *GameQuestion {
	for i := range g.Questions {
		if g.Questions[i].Level() == level {
			return &g.Questions[i]
		}
	}
	return nil
}

// TimedOut reports whether the time limit elapsed at now.
func (g *Game) TimedOut(now time.Time) bool {
	return now.Sub(g.CreatedAt) > TimeLimit
}

// AnswerCurrentQuestion applies a submitted key. A late or wrong answer finishes the game
// failed with the fireproof prize; a correct answer on the last level wins the top prize.
func (g *Game) AnswerCurrentQuestion(key string, now time.Time) (AnswerOutcome, error) {
	if g.Finished() {
		return AnswerOutcome{}, ErrGameFinished
	}
	current := g.CurrentGameQuestion()
	if current == nil {
		return AnswerOutcome{}, fmt.Errorf("%w: no question at level %d", ErrInvalidGame, g.CurrentLevel)
	}
	outcome := AnswerOutcome{
		CorrectKey:    current.CorrectAnswerKey(),
		CorrectAnswer: current.CorrectAnswer(),
	}

	if g.TimedOut(now) {
		g.finish(FireproofPrize(g.PreviousLevel()), true, now)
		outcome.Finished = true
		outcome.TimedOut = true
		return outcome, nil
	}

	if !current.AnswerCorrect(key) {
		g.finish(FireproofPrize(g.PreviousLevel()), true, now)
		outcome.Finished = true
		return outcome, nil
	}

	outcome.Correct = true
	g.CurrentLevel++
	g.UpdatedAt = now
	if g.CurrentLevel > MaxLevel {
		g.finish(TopPrize(), false, now)
		outcome.Finished = true
	}
	return outcome, nil
}

// TakeMoney banks the prize of the last passed level.
func (g *Game) TakeMoney(now time.Time) error {
	if g.Finished() {
		return ErrGameFinished
	}
	if g.TimedOut(now) {
		g.finish(FireproofPrize(g.PreviousLevel()), true, now)
		return nil
	}
	g.finish(Prize(g.PreviousLevel()), false, now)
	return nil
}

// UseHelp applies kind to the current question. Each kind works once per game.
func (g *Game) UseHelp(kind HelpKind, now time.Time, rnd *rand.Rand) error {
	if g.Finished() {
		return ErrGameFinished
	}
	if _, err := ParseHelpKind(string(kind)); err != nil {
		return err
	}
	if g.HelpsUsed.Has(kind) {
		return ErrHelpAlreadyUsed
	}
	current := g.CurrentGameQuestion()
	if current == nil {
		return fmt.Errorf("%w: no question at level %d", ErrInvalidGame, g.CurrentLevel)
	}
	current.applyHelp(kind, rnd)
	g.HelpsUsed.Add(kind)
	g.UpdatedAt = now
	return nil
}

func (g *Game) finish(prize int64, failed bool, now time.Time) {
	finishedAt := now
	g.FinishedAt = &finishedAt
	g.IsFailed = failed
	g.Prize = prize
	g.UpdatedAt = now
}
