package selector

import (
	"fmt"
	"strings"
)

// Difficulty is the optional difficulty tag of an Item.
type Difficulty string

const (
	DifficultyUnknown Difficulty = ""
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
)

// ParseDifficulty normalizes a difficulty name. Unrecognized values map to
// DifficultyUnknown.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	}
	return DifficultyUnknown
}

// Item is a practice unit (question, flashcard or task). Items are read-only
// inputs; the selector never mutates them.
type Item struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Section    string     `json:"section,omitempty"`
}

// TopicStat is the learner's aggregated performance on one topic.
type TopicStat struct {
	Topic     string  `json:"topic"`
	Accuracy  float64 `json:"accuracy"` // 0-100
	Attempted int     `json:"attempted"`
}

// Reason explains why an item was selected.
type Reason string

const (
	ReasonMissed   Reason = "missed"
	ReasonDue      Reason = "due"
	ReasonWeakArea Reason = "weak_area"
	ReasonFresh    Reason = "fresh"
)

// Bucket is the breakdown entry for one selected item.
type Bucket struct {
	ItemID string `json:"item_id"`
	Reason Reason `json:"reason"`
	Topic  string `json:"topic,omitempty"` // set for weak-area picks
}

// Label returns the user-facing text for the bucket.
func (b Bucket) Label() string {
	switch b.Reason {
	case ReasonMissed:
		return "previously missed"
	case ReasonDue:
		return "due"
	case ReasonWeakArea:
		return fmt.Sprintf("weak area: %s", b.Topic)
	case ReasonFresh:
		return "fresh"
	}
	return string(b.Reason)
}

// Selection is the ordered result of Select. Breakdown[i] describes Items[i].
type Selection struct {
	Items     []Item   `json:"items"`
	Breakdown []Bucket `json:"breakdown"`
}

// Len returns the number of selected items.
func (s Selection) Len() int {
	return len(s.Items)
}

// IDs returns the selected item IDs in order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s.Items))
	for i, it := range s.Items {
		ids[i] = it.ID
	}
	return ids
}

// Counts returns the number of selected items per reason.
func (s Selection) Counts() map[Reason]int {
	counts := make(map[Reason]int, 4)
	for _, b := range s.Breakdown {
		counts[b.Reason]++
	}
	return counts
}
