package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGameNotFound is returned when a game id does not resolve.
	ErrGameNotFound = errors.New("game not found")
	// ErrUserNotFound is returned when a user id or email does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound indicates a referenced question is missing from the bank.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoQuestionsForLevel is returned when the bank has no candidates for a level.
	ErrNoQuestionsForLevel = errors.New("no questions for level")
	// ErrGameInProgress is returned when a user already has an unfinished game.
	ErrGameInProgress = errors.New("game already in progress")
	// ErrGameFinished is returned for any move on a finished game.
	ErrGameFinished = errors.New("game is finished")
	// ErrInvalidHelp indicates an unknown help kind.
	ErrInvalidHelp = errors.New("invalid help kind")
	// ErrHelpAlreadyUsed is returned when a help kind was already used in the game.
	ErrHelpAlreadyUsed = errors.New("help already used")
	// ErrForbidden is returned when the requester does not own the game.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by sign in for unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned on sign up with a registered email.
	ErrEmailTaken = errors.New("email already taken")
	// ErrDuplicateQuestion is returned when a question text already exists.
	ErrDuplicateQuestion = errors.New("question text already exists")
	// ErrInvalidGame indicates a game was assembled from an incomplete question set.
	ErrInvalidGame = errors.New("invalid game")
)

// GameInProgressError carries the id of the game that blocks creating a new one.
type GameInProgressError struct {
	GameID string
}

func (e *GameInProgressError) Error() string {
	return fmt.Sprintf("game %s already in progress", e.GameID)
}

func (e *GameInProgressError) Is(target error) bool {
	return target == ErrGameInProgress
}

// NoQuestionsError names the level that has no candidates.
type NoQuestionsError struct {
	Level int
}

func (e *NoQuestionsError) Error() string {
	return fmt.Sprintf("no questions for level %d", e.Level)
}

func (e *NoQuestionsError) Is(target error) bool {
	return target == ErrNoQuestionsForLevel
}
