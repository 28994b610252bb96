package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinLevel = 0
	MaxLevel = 14
	// LevelCount is the number of questions in one game.
	LevelCount = MaxLevel - MinLevel + 1
)

var validate = validator.New()

// Question is a bank record. Answer1 is always the correct answer.
type Question struct {
	ID        string    `json:"id" yaml:"id"`
	Level     int       `json:"level" yaml:"level" validate:"min=0,max=14"`
	Text      string    `json:"text" yaml:"text" validate:"required,max=500"`
	Answer1   string    `json:"answer1" yaml:"answer1" validate:"required"`
	Answer2   string    `json:"answer2" yaml:"answer2" validate:"required"`
	Answer3   string    `json:"answer3" yaml:"answer3" validate:"required"`
	Answer4   string    `json:"answer4" yaml:"answer4" validate:"required"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}

// Validate checks level range and presence of text and answers.
func (q Question) Validate() error {
	return validate.Struct(q)
}

// Answer returns answer n (1..4).
func (q Question) Answer(n int) string {
	switch n {
	case 1:
		return q.Answer1
	case 2:
		return q.Answer2
	case 3:
		return q.Answer3
	case 4:
		return q.Answer4
	}
	return ""
}
