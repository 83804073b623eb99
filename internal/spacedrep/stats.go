package spacedrep

import "time"

// LearningThreshold is the repetition count at which an item leaves the
// learning bucket and enters review.
const LearningThreshold = 2

// Entry pairs an item ID with its repetition state (nil for new items).
type Entry struct {
	ItemID string
	State  *RepetitionState
}

// Stats summarizes a set of items by study bucket. New, Learning and Review
// partition Total; DueToday and Overdue are independent counters.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
}

// StudyStats buckets entries relative to now's calendar day.
func StudyStats(entries []Entry, now time.Time) Stats {
	var s Stats
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	for _, e := range entries {
		s.Total++
		rs := e.State
		if rs == nil {
			s.New++
			continue
		}

		if rs.Repetitions < LearningThreshold {
			s.Learning++
		} else {
			s.Review++
		}

		if rs.NextReview.IsZero() {
			continue
		}
		switch {
		case rs.NextReview.Before(today):
			s.Overdue++
		case rs.NextReview.Before(tomorrow):
			s.DueToday++
		}
	}
	return s
}
