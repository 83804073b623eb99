package spacedrep

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNext_NilGood(t *testing.T) {
	s := newTestScheduler(t)
	got := s.Next(nil, Good, t0)

	if got.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", got.Repetitions)
	}
	if got.Interval != 1 {
		t.Errorf("Interval = %d, want 1", got.Interval)
	}
	if !approxEqual(got.EaseFactor, 2.5) {
		t.Errorf("EaseFactor = %v, want 2.5", got.EaseFactor)
	}
	if !got.NextReview.Equal(t0.AddDate(0, 0, 1)) {
		t.Errorf("NextReview = %v, want %v", got.NextReview, t0.AddDate(0, 0, 1))
	}
	if !got.LastReview.Equal(t0) {
		t.Errorf("LastReview = %v, want %v", got.LastReview, t0)
	}
}

func TestNext_EasyAfterFirstReview(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{ItemID: "q1", Interval: 1, EaseFactor: 2.5, Repetitions: 1}
	got := s.Next(cur, Easy, t0)

	if got.Interval != 3 {
		t.Errorf("Interval = %d, want 3", got.Interval)
	}
	if !approxEqual(got.EaseFactor, 2.65) {
		t.Errorf("EaseFactor = %v, want 2.65", got.EaseFactor)
	}
	if got.Repetitions != 2 {
		t.Errorf("Repetitions = %d, want 2", got.Repetitions)
	}
	if got.ItemID != "q1" {
		t.Errorf("ItemID = %q, want q1", got.ItemID)
	}
}

func TestNext_DoesNotMutateInput(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{ItemID: "q1", Interval: 6, EaseFactor: 2.5, Repetitions: 3}
	before := *cur
	_ = s.Next(cur, Again, t0)
	if *cur != before {
		t.Errorf("input mutated: got %+v, want %+v", *cur, before)
	}
}

func TestNext_GoodGrowsByEase(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: 6, EaseFactor: 2.5, Repetitions: 3}
	got := s.Next(cur, Good, t0)
	if got.Interval != 15 {
		t.Errorf("Interval = %d, want 15", got.Interval)
	}
	if !approxEqual(got.EaseFactor, 2.5) {
		t.Errorf("EaseFactor = %v, want unchanged 2.5", got.EaseFactor)
	}
}

func TestNext_Hard(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: 10, EaseFactor: 2.5, Repetitions: 4}
	got := s.Next(cur, Hard, t0)
	if got.Interval != 12 {
		t.Errorf("Interval = %d, want 12", got.Interval)
	}
	if !approxEqual(got.EaseFactor, 2.35) {
		t.Errorf("EaseFactor = %v, want 2.35", got.EaseFactor)
	}
	if got.Repetitions != 5 {
		t.Errorf("Repetitions = %d, want 5", got.Repetitions)
	}
}

func TestNext_AgainResets(t *testing.T) {
	s := newTestScheduler(t)
	for _, interval := range []int{0, 1, 7, 45, 365} {
		cur := &RepetitionState{Interval: interval, EaseFactor: 2.5, Repetitions: 5}
		got := s.Next(cur, Again, t0)
		if got.Interval != DefaultRelearnInterval {
			t.Errorf("interval %d: Interval = %d, want %d", interval, got.Interval, DefaultRelearnInterval)
		}
		if got.Repetitions != 0 {
			t.Errorf("interval %d: Repetitions = %d, want 0", interval, got.Repetitions)
		}
		if !approxEqual(got.EaseFactor, 2.3) {
			t.Errorf("interval %d: EaseFactor = %v, want 2.3", interval, got.EaseFactor)
		}
	}
}

func TestNext_AgainUsesConfiguredRelearnStep(t *testing.T) {
	s, err := NewScheduler(Config{RelearnInterval: 3})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	got := s.Next(&RepetitionState{Interval: 40, EaseFactor: 2.2, Repetitions: 6}, Again, t0)
	if got.Interval != 3 {
		t.Errorf("Interval = %d, want 3", got.Interval)
	}
	if !got.NextReview.Equal(t0.AddDate(0, 0, 3)) {
		t.Errorf("NextReview = %v, want %v", got.NextReview, t0.AddDate(0, 0, 3))
	}
}

func TestNext_EaseFloor(t *testing.T) {
	s := newTestScheduler(t)
	var cur *RepetitionState
	for i := 0; i < 20; i++ {
		next := s.Next(cur, Again, t0.AddDate(0, 0, i))
		if next.EaseFactor < DefaultMinEase-1e-9 {
			t.Fatalf("iteration %d: EaseFactor = %v, below floor", i, next.EaseFactor)
		}
		cur = &next
	}
	if !approxEqual(cur.EaseFactor, DefaultMinEase) {
		t.Errorf("EaseFactor = %v, want floor %v", cur.EaseFactor, DefaultMinEase)
	}

	for i := 0; i < 20; i++ {
		next := s.Next(cur, Hard, t0)
		if next.EaseFactor < DefaultMinEase-1e-9 {
			t.Fatalf("hard iteration %d: EaseFactor = %v, below floor", i, next.EaseFactor)
		}
		cur = &next
	}
}

func TestNext_NoEaseCeiling(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: 1, EaseFactor: 2.5, Repetitions: 1}
	for i := 0; i < 10; i++ {
		next := s.Next(cur, Easy, t0)
		cur = &next
	}
	if !approxEqual(cur.EaseFactor, 4.0) {
		t.Errorf("EaseFactor = %v, want 4.0 after ten easy ratings", cur.EaseFactor)
	}
}

func TestNext_Monotonic(t *testing.T) {
	s := newTestScheduler(t)
	states := []*RepetitionState{
		nil,
		{},
		{Interval: 1, EaseFactor: 2.5, Repetitions: 1},
		{Interval: 1, EaseFactor: 1.3, Repetitions: 0},
		{Interval: 3, EaseFactor: 1.3, Repetitions: 2},
		{Interval: 15, EaseFactor: 2.7, Repetitions: 4},
		{Interval: 200, EaseFactor: 3.1, Repetitions: 9},
		{Interval: 12, EaseFactor: 2.5, Repetitions: 0},
		{Interval: -4, EaseFactor: -1, Repetitions: -2},
	}
	for _, st := range states {
		easy := s.Next(st, Easy, t0).Interval
		good := s.Next(st, Good, t0).Interval
		hard := s.Next(st, Hard, t0).Interval
		again := s.Next(st, Again, t0).Interval

		if !(easy >= good && good >= hard) {
			t.Errorf("state %+v: easy=%d good=%d hard=%d, want easy >= good >= hard", st, easy, good, hard)
		}
		if hard < 1 {
			t.Errorf("state %+v: hard interval %d < 1", st, hard)
		}
		if again != DefaultRelearnInterval {
			t.Errorf("state %+v: again interval %d, want %d", st, again, DefaultRelearnInterval)
		}
	}
}

func TestNext_NormalizesMalformedState(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: -10, EaseFactor: math.NaN(), Repetitions: -3}
	got := s.Next(cur, Good, t0)

	if got.Interval != 1 {
		t.Errorf("Interval = %d, want 1", got.Interval)
	}
	if got.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", got.Repetitions)
	}
	if !approxEqual(got.EaseFactor, DefaultInitialEase) {
		t.Errorf("EaseFactor = %v, want %v", got.EaseFactor, DefaultInitialEase)
	}

	low := s.Next(&RepetitionState{Interval: 4, EaseFactor: 0.4, Repetitions: 3}, Good, t0)
	if low.EaseFactor < DefaultMinEase {
		t.Errorf("EaseFactor = %v, want clamped to floor", low.EaseFactor)
	}
}

func TestNext_IntervalAtLeastOne(t *testing.T) {
	s := newTestScheduler(t)
	for _, r := range Ratings {
		got := s.Next(nil, r, t0)
		if got.Interval < 1 {
			t.Errorf("rating %v: Interval = %d, want >= 1", r, got.Interval)
		}
		if !got.NextReview.Equal(t0.AddDate(0, 0, got.Interval)) {
			t.Errorf("rating %v: NextReview = %v, want LastReview + %d days", r, got.NextReview, got.Interval)
		}
	}
}

func TestNext_UnknownRatingTreatedAsAgain(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: 30, EaseFactor: 2.5, Repetitions: 5}
	got := s.Next(cur, Rating(42), t0)
	if got.Repetitions != 0 || got.Interval != DefaultRelearnInterval {
		t.Errorf("got %+v, want relearn reset", got)
	}
}

func TestNext_LearningSequence(t *testing.T) {
	s := newTestScheduler(t)
	now := t0
	var cur *RepetitionState
	want := []int{1, 3, 8, 20}
	for i, w := range want {
		next := s.Next(cur, Good, now)
		if next.Interval != w {
			t.Errorf("review %d: Interval = %d, want %d", i+1, next.Interval, w)
		}
		cur = &next
		now = next.NextReview
	}
}

func TestPreview(t *testing.T) {
	s := newTestScheduler(t)
	cur := &RepetitionState{Interval: 6, EaseFactor: 2.5, Repetitions: 3}
	preview := s.Preview(cur, t0)
	if len(preview) != 4 {
		t.Fatalf("len(preview) = %d, want 4", len(preview))
	}
	for _, r := range Ratings {
		want := s.Next(cur, r, t0)
		if preview[r] != want {
			t.Errorf("preview[%v] = %+v, want %+v", r, preview[r], want)
		}
	}
}

func TestDueIDs_SortedMostOverdueFirst(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	states := map[string]*RepetitionState{
		"q-a": {ItemID: "q-a", Repetitions: 1, NextReview: now.Add(-2 * 24 * time.Hour)},
		"q-b": {ItemID: "q-b", Repetitions: 1, NextReview: now.Add(-5 * 24 * time.Hour)},
		"q-c": {ItemID: "q-c", Repetitions: 1, NextReview: now.Add(-10 * 24 * time.Hour)},
	}

	due := DueIDs(states, now)
	if len(due) != 3 {
		t.Fatalf("expected 3 due items, got %d", len(due))
	}
	if due[0] != "q-c" || due[1] != "q-b" || due[2] != "q-a" {
		t.Errorf("unexpected order: %v", due)
	}
}

func TestDueIDs_ExcludesNotDueAndNew(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	states := map[string]*RepetitionState{
		"q-a": {ItemID: "q-a", NextReview: now.Add(-24 * time.Hour)},
		"q-b": {ItemID: "q-b", NextReview: now.Add(5 * 24 * time.Hour)},
		"q-c": {ItemID: "q-c"},
		"q-d": nil,
	}

	due := DueIDs(states, now)
	if len(due) != 1 || due[0] != "q-a" {
		t.Errorf("DueIDs = %v, want [q-a]", due)
	}
}
