package domain

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// HelpKind names a one-shot help.
type HelpKind string

const (
	HelpAudience   HelpKind = "audience_help"
	HelpFiftyFifty HelpKind = "fifty_fifty"
	HelpFriendCall HelpKind = "friend_call"
)

// HelpKinds lists every help in display order.
var HelpKinds = []HelpKind{HelpFiftyFifty, HelpAudience, HelpFriendCall}

// ParseHelpKind accepts the wire names of the helps.
func ParseHelpKind(raw string) (HelpKind, error) {
	switch kind := HelpKind(strings.TrimSpace(raw)); kind {
	case HelpAudience, HelpFiftyFifty, HelpFriendCall:
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidHelp, raw)
}

// Label is the short name shown in views.
func (k HelpKind) Label() string {
	switch k {
	case HelpFiftyFifty:
		return "50/50"
	case HelpAudience:
		return "Audience"
	case HelpFriendCall:
		return "Friend"
	}
	return string(k)
}

// HelpSet holds the help kinds used in a game. Adding is idempotent.
type HelpSet []HelpKind

// Has reports whether kind was used.
func (s HelpSet) Has(kind HelpKind) bool {
	for _, k := range s {
		if k == kind {
			return true
		}
	}
	return false
}

// Add inserts kind and reports whether it was absent.
func (s *HelpSet) Add(kind HelpKind) bool {
	if s.Has(kind) {
		return false
	}
	*s = append(*s, kind)
	return true
}

// HelpPayload is the per-question record of applied helps.
type HelpPayload struct {
	Audience   map[string]int `json:"audience_help,omitempty"`
	FiftyFifty []string       `json:"fifty_fifty,omitempty"`
	FriendCall string         `json:"friend_call,omitempty"`
}

// Empty reports whether no help was applied.
func (p HelpPayload) Empty() bool {
	return len(p.Audience) == 0 && len(p.FiftyFifty) == 0 && p.FriendCall == ""
}

// Has reports whether the payload for kind is present.
func (p HelpPayload) Has(kind HelpKind) bool {
	switch kind {
	case HelpAudience:
		return len(p.Audience) > 0
	case HelpFiftyFifty:
		return len(p.FiftyFifty) > 0
	case HelpFriendCall:
		return p.FriendCall != ""
	}
	return false
}

// AnswerKeys are the keys of the four variants of a game question.
var AnswerKeys = []string{"a", "b", "c", "d"}

// FriendNames are picked for the friend call text.
var FriendNames = []string{"Alex", "Maria", "Dmitry", "Olga", "Vasily"}

// AudienceDistribution returns integer percentages for keys summing to 100.
// The correct key always receives the strictly largest share.
func AudienceDistribution(keys []string, correct string, rnd *rand.Rand) map[string]int {
	weights := make(map[string]int, len(keys))
	total := 0
	for _, key := range keys {
		w := 5 + rnd.Intn(36)
		if key == correct {
			w = 45 + rnd.Intn(36)
		}
		weights[key] = w
		total += w
	}

	result := make(map[string]int, len(keys))
	type remainder struct {
		key string
		rem int
	}
	rems := make([]remainder, 0, len(keys))
	assigned := 0
	for _, key := range keys {
		scaled := weights[key] * 100
		result[key] = scaled / total
		assigned += result[key]
		rems = append(rems, remainder{key: key, rem: scaled % total})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].rem > rems[j].rem })
	for i := 0; assigned < 100; i++ {
		result[rems[i%len(rems)].key]++
		assigned++
	}
	return result
}

// FiftyFiftyKeys keeps the correct key and one other picked uniformly.
func FiftyFiftyKeys(keys []string, correct string, rnd *rand.Rand) []string {
	others := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != correct {
			others = append(others, key)
		}
	}
	if len(others) == 0 {
		return []string{correct}
	}
	remaining := []string{correct, others[rnd.Intn(len(others))]}
	sort.Strings(remaining)
	return remaining
}

// FriendCallText names one key as the friend's guess; it is the correct key 80% of the time.
func FriendCallText(keys []string, correct string, rnd *rand.Rand) string {
	guess := correct
	if rnd.Intn(10) >= 8 {
		others := make([]string, 0, len(keys))
		for _, key := range keys {
			if key != correct {
				others = append(others, key)
			}
		}
		if len(others) > 0 {
			guess = others[rnd.Intn(len(others))]
		}
	}
	friend := FriendNames[rnd.Intn(len(FriendNames))]
	return fmt.Sprintf("%s thinks the answer is %s", friend, strings.ToUpper(guess))
}
