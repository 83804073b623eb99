// Package session builds study sessions and records ratings by wiring the
// content provider, the review store, the item selector and the scheduler.
package session

import (
	"time"

	"github.com/rob637/passcpa-sub012/internal/content"
	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
)

// DefaultCount is the default session size offered to learners.
const DefaultCount = 10

// Request describes the session a learner asked for.
type Request struct {
	UserID     string
	Filter     content.Filter
	Count      int // <= 0 yields an empty session
	ExcludeIDs []string
}

// Session is a selected, ordered set of items.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Filter    content.Filter
	Selection selector.Selection

	// PoolSize is the number of items the filter matched.
	PoolSize int
}

// Response is a learner's self-rating of one item.
type Response struct {
	UserID    string
	SessionID string
	ItemID    string
	Rating    spacedrep.Rating
}

// Correct reports whether the rating counts as a correct answer for
// accuracy and missed-item tracking.
func (r Response) Correct() bool {
	return r.Rating != spacedrep.Again
}

// TopicSummary is per-topic accuracy for the stats view.
type TopicSummary struct {
	Topic     string  `json:"topic"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
	Weak      bool    `json:"weak"`
}

// Overview is the learner's progress over a filtered pool.
type Overview struct {
	Study  spacedrep.Stats `json:"study"`
	Topics []TopicSummary  `json:"topics"`
	Missed int             `json:"missed"`
}

// DueItem is an item waiting for review.
type DueItem struct {
	Item        selector.Item
	State       spacedrep.RepetitionState
	OverdueDays float64
}
