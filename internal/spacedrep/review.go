package spacedrep

import (
	"fmt"
	"strings"
	"time"
)

// Rating is the learner's self-assessed recall quality for one review.
type Rating int

const (
	Again Rating = iota + 1
	Hard
	Good
	Easy
)

// Ratings lists every rating from harshest to most lenient.
var Ratings = []Rating{Again, Hard, Good, Easy}

func (r Rating) String() string {
	switch r {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Valid reports whether r is one of the four known ratings.
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// ParseRating accepts a rating name ("again", "hard", "good", "easy") or its
// 1-4 numeric form.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again", "1":
		return Again, nil
	case "hard", "2":
		return Hard, nil
	case "good", "3":
		return Good, nil
	case "easy", "4":
		return Easy, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRating, s)
}

// RepetitionState holds the per-user scheduling metadata for one item.
// A nil *RepetitionState means the item has never been reviewed.
type RepetitionState struct {
	ItemID      string    `json:"item_id"`
	Interval    int       `json:"interval"`
	EaseFactor  float64   `json:"ease_factor"`
	Repetitions int       `json:"repetitions"`
	LastReview  time.Time `json:"last_review"`
	NextReview  time.Time `json:"next_review"` // zero means never scheduled
}

// IsDue returns true if the item should be studied at now: either it has no
// schedule yet, or its next review is at or before now.
func IsDue(state *RepetitionState, now time.Time) bool {
	if state == nil || state.NextReview.IsZero() {
		return true
	}
	return !now.Before(state.NextReview)
}

// IsDue is the method form of the package-level predicate.
func (rs *RepetitionState) IsDue(now time.Time) bool {
	return IsDue(rs, now)
}

// IsNew returns true if the item has never been scheduled.
func (rs *RepetitionState) IsNew() bool {
	return rs == nil || rs.NextReview.IsZero()
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs *RepetitionState) OverdueDays(now time.Time) float64 {
	if rs.IsNew() || now.Before(rs.NextReview) {
		return 0
	}
	return now.Sub(rs.NextReview).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs *RepetitionState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(rs.NextReview.Sub(now).Hours()/24.0) + 1
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNew     ReviewStatus = "new"
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for UI display. An item is overdue once
// its review date falls before the start of now's calendar day.
func (rs *RepetitionState) Status(now time.Time) ReviewStatus {
	switch {
	case rs.IsNew():
		return ReviewNew
	case rs.NextReview.Before(startOfDay(now)):
		return ReviewOverdue
	case rs.IsDue(now):
		return ReviewDue
	}
	return ReviewNotDue
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
