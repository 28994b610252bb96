package domain

import (
	"math/rand"
	"strings"
)

// GameQuestion is a question placed in a game at its level, with its variants shuffled.
// Mapping[i] is the answer number (1..4) shown under AnswerKeys[i]; the correct key maps to 1.
type GameQuestion struct {
	ID         string      `json:"id"`
	GameID     string      `json:"gameId"`
	QuestionID string      `json:"questionId"`
	Question   Question    `json:"question"`
	Mapping    [4]int      `json:"mapping"`
	Help       HelpPayload `json:"help"`
}

// NewGameQuestion places q with a random permutation of its answers.
func NewGameQuestion(id, gameID string, q Question, rnd *rand.Rand) GameQuestion {
	gq := GameQuestion{ID: id, GameID: gameID, QuestionID: q.ID, Question: q}
	for i, n := range rnd.Perm(4) {
		gq.Mapping[i] = n + 1
	}
	return gq
}

func (gq GameQuestion) Level() int {
	return gq.Question.Level
}

func (gq GameQuestion) Text() string {
	return gq.Question.Text
}

// Variants maps each key to the answer text displayed under it.
func (gq GameQuestion) Variants() map[string]string {
	variants := make(map[string]string, len(AnswerKeys))
	for i, key := range AnswerKeys {
		variants[key] = gq.Question.Answer(gq.Mapping[i])
	}
	return variants
}

// CorrectAnswerKey returns the key showing answer1.
func (gq GameQuestion) CorrectAnswerKey() string {
	for i, n := range gq.Mapping {
		if n == 1 {
			return AnswerKeys[i]
		}
	}
	return ""
}

// CorrectAnswer returns the text of the correct answer.
func (gq GameQuestion) CorrectAnswer() string {
	return gq.Question.Answer1
}

// AnswerCorrect compares a submitted key case-insensitively.
func (gq GameQuestion) AnswerCorrect(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key != "" && key == gq.CorrectAnswerKey()
}

// VisibleKeys returns the keys still shown after a fifty-fifty.
func (gq GameQuestion) VisibleKeys() []string {
	if len(gq.Help.FiftyFifty) > 0 {
		return gq.Help.FiftyFifty
	}
	return AnswerKeys
}

func (gq *GameQuestion) applyHelp(kind HelpKind, rnd *rand.Rand) {
	correct := gq.CorrectAnswerKey()
	switch kind {
	case HelpAudience:
		gq.Help.Audience = AudienceDistribution(AnswerKeys, correct, rnd)
	case HelpFiftyFifty:
		gq.Help.FiftyFifty = FiftyFiftyKeys(AnswerKeys, correct, rnd)
	case HelpFriendCall:
		gq.Help.FriendCall = FriendCallText(AnswerKeys, correct, rnd)
	}
}
