package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// ItemRecord is a persisted practice item.
type ItemRecord struct {
	ID         string
	Course     string
	Section    string
	Topic      string
	Difficulty string
	Kind       string
	Prompt     string
	Answer     string
}

// ItemFilter narrows item queries. Empty fields match everything.
type ItemFilter struct {
	Course     string
	Section    string
	Topic      string
	Difficulty string
}

// RepetitionRecord is the persisted scheduling state of one item for one user.
// Zero times mean "not set".
type RepetitionRecord struct {
	UserID       string
	ItemID       string
	IntervalDays int
	EaseFactor   float64
	Repetitions  int
	LastReview   time.Time
	NextReview   time.Time
}

// AnswerEventData captures a single rated response.
type AnswerEventData struct {
	UserID     string
	SessionID  string
	ItemID     string
	Course     string
	Section    string
	Topic      string
	Rating     string
	Correct    bool
	AnsweredAt time.Time
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	Sequence int64
	AnswerEventData
}

// TopicAccuracy is the raw per-topic answer tally for one user.
type TopicAccuracy struct {
	Topic     string
	Attempted int
	Correct   int
}

// Percent returns accuracy on a 0-100 scale, or 0 with no attempts.
func (t TopicAccuracy) Percent() float64 {
	if t.Attempted == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Attempted) * 100
}

// ItemRepo stores practice content.
type ItemRepo interface {
	// Upsert inserts or replaces items by ID.
	Upsert(ctx context.Context, items []ItemRecord) error

	// Query returns items matching f, ordered by ID.
	Query(ctx context.Context, f ItemFilter) ([]ItemRecord, error)

	// Get returns one item or ErrNotFound.
	Get(ctx context.Context, id string) (*ItemRecord, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)
}

// ReviewRepo stores per-user repetition states and answer history.
type ReviewRepo interface {
	// RepetitionStates returns the stored states for the given item IDs,
	// keyed by item ID. Items without a state are absent from the map.
	RepetitionStates(ctx context.Context, userID string, itemIDs []string) (map[string]RepetitionRecord, error)

	// AllRepetitionStates returns every stored state for the user.
	AllRepetitionStates(ctx context.Context, userID string) (map[string]RepetitionRecord, error)

	// RecordReview appends the answer event and upserts the repetition state
	// in one transaction. It returns the event's sequence number.
	RecordReview(ctx context.Context, state RepetitionRecord, event AnswerEventData) (int64, error)

	// TopicAccuracy tallies answers per topic, optionally limited to a
	// course/section via f (Topic and Difficulty are ignored).
	TopicAccuracy(ctx context.Context, userID string, f ItemFilter) ([]TopicAccuracy, error)

	// MissedItemIDs returns items whose most recent answer was wrong,
	// most recent miss first.
	MissedItemIDs(ctx context.Context, userID string) ([]string, error)

	// AnswerEvents returns the user's answer history in sequence order.
	// limit <= 0 means no limit; otherwise the latest limit events are returned.
	AnswerEvents(ctx context.Context, userID string, limit int) ([]AnswerEventRecord, error)

	// ResetUser deletes all states and answers of a user.
	ResetUser(ctx context.Context, userID string) error
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
