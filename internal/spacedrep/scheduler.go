package spacedrep

import (
	"math"
	"sort"
	"time"
)

// Scheduler computes the next repetition state after a rating. It holds only
// immutable constants and is safe for concurrent use.
type Scheduler struct {
	cfg Config
}

// NewScheduler creates a Scheduler from cfg. Zero-valued fields are filled
// with defaults; unusable values return ErrInvalidConfig.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg.withDefaults()}, nil
}

// Config returns the effective constants.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Next returns the state that follows current after a review rated r at now.
// current is never mutated; nil is treated as a never-reviewed item. Unknown
// ratings are treated as Again.
func (s *Scheduler) Next(current *RepetitionState, r Rating, now time.Time) RepetitionState {
	st := s.normalize(current)

	hard := max(1, roundDays(float64(st.Interval)*s.cfg.HardMultiplier))
	good := 1
	if st.Repetitions+1 > 1 {
		good = roundDays(float64(st.Interval) * st.EaseFactor)
	}
	// A more lenient rating never schedules sooner than a harsher one.
	good = max(good, hard)
	easy := max(good, roundDays(float64(st.Interval)*st.EaseFactor*s.cfg.EasyMultiplier))

	next := st
	switch r {
	case Hard:
		next.Repetitions++
		next.Interval = hard
		next.EaseFactor = math.Max(s.cfg.MinEase, st.EaseFactor-s.cfg.HardPenalty)
	case Good:
		next.Repetitions++
		next.Interval = good
	case Easy:
		next.Repetitions++
		next.Interval = easy
		next.EaseFactor = st.EaseFactor + s.cfg.EasyBonus
	default:
		next.Repetitions = 0
		next.Interval = s.cfg.RelearnInterval
		next.EaseFactor = math.Max(s.cfg.MinEase, st.EaseFactor-s.cfg.AgainPenalty)
	}

	next.LastReview = now
	next.NextReview = now.AddDate(0, 0, next.Interval)
	return next
}

// Preview returns the result of reviewing current with each possible rating.
func (s *Scheduler) Preview(current *RepetitionState, now time.Time) map[Rating]RepetitionState {
	result := make(map[Rating]RepetitionState, len(Ratings))
	for _, r := range Ratings {
		result[r] = s.Next(current, r, now)
	}
	return result
}

// normalize copies current and clamps out-of-range fields.
func (s *Scheduler) normalize(current *RepetitionState) RepetitionState {
	if current == nil {
		return RepetitionState{EaseFactor: s.cfg.InitialEase}
	}
	st := *current
	if st.Interval < 0 {
		st.Interval = 0
	}
	if st.Repetitions < 0 {
		st.Repetitions = 0
	}
	switch {
	case math.IsNaN(st.EaseFactor) || math.IsInf(st.EaseFactor, 0) || st.EaseFactor == 0:
		st.EaseFactor = s.cfg.InitialEase
	case st.EaseFactor < s.cfg.MinEase:
		st.EaseFactor = s.cfg.MinEase
	}
	return st
}

func roundDays(f float64) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

// DueIDs returns the IDs of reviewed items that are due at now, sorted by
// most overdue first. Items without a schedule are not included; they belong
// to the fresh pool rather than the review queue.
func DueIDs(states map[string]*RepetitionState, now time.Time) []string {
	type dueItem struct {
		id      string
		overdue float64
	}
	var due []dueItem

	for id, rs := range states {
		if rs.IsNew() || !rs.IsDue(now) {
			continue
		}
		due = append(due, dueItem{id: id, overdue: rs.OverdueDays(now)})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].id < due[j].id
	})

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.id
	}
	return ids
}
