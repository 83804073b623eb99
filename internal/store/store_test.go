package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked in TestOpenFileUsesWAL.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, db.QueryRow("PRAGMA "+tt.pragma).Scan(&got), "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpenFileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "passcpa.db")
	require.NoError(t, EnsureDir(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{tableItems, tableRepetitions, tableAnswers, "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passcpa.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.ItemRepo().Upsert(ctx, sampleItems()))
	require.NoError(t, s.Close())

	// Auto-migration on an existing database is a no-op.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.ItemRepo().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "x.db")
		t.Setenv("PASSCPA_DB", want)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.DirExists(t, filepath.Dir(want))
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("PASSCPA_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "passcpa", "passcpa.db"), got)
	})
}

func sampleItems() []ItemRecord {
	return []ItemRecord{
		{ID: "far-001", Course: "cpa", Section: "FAR", Topic: "leases", Difficulty: "hard", Prompt: "Lease classification?"},
		{ID: "far-002", Course: "cpa", Section: "FAR", Topic: "revenue", Difficulty: "medium"},
		{ID: "aud-001", Course: "cpa", Section: "AUD", Topic: "ethics", Difficulty: "easy"},
		{ID: "see-001", Course: "ea", Section: "SEE1", Topic: "filing-status", Kind: "flashcard"},
	}
}

func TestItemUpsertAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.ItemRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleItems()))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, err := repo.Query(ctx, ItemFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "aud-001", all[0].ID, "items are ordered by ID")
	assert.Equal(t, "question", all[0].Kind, "kind defaults to question")
	assert.Equal(t, "flashcard", all[3].Kind)

	far, err := repo.Query(ctx, ItemFilter{Course: "cpa", Section: "FAR"})
	require.NoError(t, err)
	assert.Len(t, far, 2)

	hard, err := repo.Query(ctx, ItemFilter{Section: "FAR", Difficulty: "hard"})
	require.NoError(t, err)
	require.Len(t, hard, 1)
	assert.Equal(t, "far-001", hard[0].ID)

	none, err := repo.Query(ctx, ItemFilter{Topic: "nope"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItemUpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.ItemRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, sampleItems()))
	require.NoError(t, repo.Upsert(ctx, []ItemRecord{
		{ID: "far-001", Course: "cpa", Section: "FAR", Topic: "leases", Difficulty: "medium"},
	}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	it, err := repo.Get(ctx, "far-001")
	require.NoError(t, err)
	assert.Equal(t, "medium", it.Difficulty)
	assert.Empty(t, it.Prompt)
}

func TestItemGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ItemRepo().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func review(user, item, topic string, correct bool, at time.Time) (RepetitionRecord, AnswerEventData) {
	rating := "good"
	if !correct {
		rating = "again"
	}
	state := RepetitionRecord{
		UserID:       user,
		ItemID:       item,
		IntervalDays: 1,
		EaseFactor:   2.5,
		Repetitions:  1,
		LastReview:   at,
		NextReview:   at.AddDate(0, 0, 1),
	}
	ev := AnswerEventData{
		UserID:     user,
		SessionID:  "s1",
		ItemID:     item,
		Course:     "cpa",
		Section:    "FAR",
		Topic:      topic,
		Rating:     rating,
		Correct:    correct,
		AnsweredAt: at,
	}
	return state, ev
}

func TestRecordReviewRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	state, ev := review("u1", "far-001", "leases", true, at)
	seq, err := repo.RecordReview(ctx, state, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	states, err := repo.RepetitionStates(ctx, "u1", []string{"far-001", "far-002"})
	require.NoError(t, err)
	require.Len(t, states, 1)
	got := states["far-001"]
	assert.Equal(t, state, got)
	assert.True(t, got.NextReview.Equal(at.AddDate(0, 0, 1)))

	// A second review of the same item replaces the state.
	state.IntervalDays = 6
	state.Repetitions = 2
	seq, err = repo.RecordReview(ctx, state, ev)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	all, err := repo.AllRepetitionStates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 6, all["far-001"].IntervalDays)

	events, err := repo.AnswerEvents(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Sequence)
	assert.Equal(t, int64(2), events[1].Sequence)
	assert.True(t, events[0].AnsweredAt.Equal(at))
	assert.True(t, events[0].Correct)
}

func TestRecordReviewRequiresIDs(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ReviewRepo().RecordReview(context.Background(), RepetitionRecord{UserID: "u1"}, AnswerEventData{})
	assert.Error(t, err)
}

func TestRepetitionStatesZeroTimes(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()

	state := RepetitionRecord{UserID: "u1", ItemID: "x", EaseFactor: 2.5}
	_, err := repo.RecordReview(ctx, state, AnswerEventData{UserID: "u1", ItemID: "x", Rating: "good", Correct: true})
	require.NoError(t, err)

	states, err := repo.RepetitionStates(ctx, "u1", []string{"x"})
	require.NoError(t, err)
	assert.True(t, states["x"].LastReview.IsZero())
	assert.True(t, states["x"].NextReview.IsZero())
}

func TestRepetitionStatesChunksLargeLookups(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, maxInArgs+20)
	for i := 0; i < maxInArgs+20; i++ {
		ids = append(ids, fmt.Sprintf("item-%04d", i))
	}
	for _, id := range []string{ids[0], ids[maxInArgs-1], ids[maxInArgs], ids[len(ids)-1]} {
		state, ev := review("u1", id, "t", true, at)
		_, err := repo.RecordReview(ctx, state, ev)
		require.NoError(t, err)
	}

	states, err := repo.RepetitionStates(ctx, "u1", ids)
	require.NoError(t, err)
	assert.Len(t, states, 4)
}

func TestStatesAreScopedPerUser(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	state, ev := review("u1", "far-001", "leases", true, at)
	_, err := repo.RecordReview(ctx, state, ev)
	require.NoError(t, err)

	states, err := repo.AllRepetitionStates(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestTopicAccuracy(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	answers := []struct {
		item, topic string
		correct     bool
	}{
		{"a1", "leases", true},
		{"a2", "leases", false},
		{"a3", "leases", false},
		{"a4", "revenue", true},
	}
	for i, a := range answers {
		state, ev := review("u1", a.item, a.topic, a.correct, at.Add(time.Duration(i)*time.Minute))
		_, err := repo.RecordReview(ctx, state, ev)
		require.NoError(t, err)
	}
	// Another section and another user must not leak in.
	state, ev := review("u1", "b1", "ethics", true, at)
	ev.Section = "AUD"
	_, err := repo.RecordReview(ctx, state, ev)
	require.NoError(t, err)
	state, ev = review("u2", "a1", "leases", true, at)
	_, err = repo.RecordReview(ctx, state, ev)
	require.NoError(t, err)

	got, err := repo.TopicAccuracy(ctx, "u1", ItemFilter{Section: "FAR"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, TopicAccuracy{Topic: "leases", Attempted: 3, Correct: 1}, got[0])
	assert.Equal(t, TopicAccuracy{Topic: "revenue", Attempted: 1, Correct: 1}, got[1])
	assert.InDelta(t, 33.33, got[0].Percent(), 0.01)

	all, err := repo.TopicAccuracy(ctx, "u1", ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTopicAccuracyPercentNoAttempts(t *testing.T) {
	assert.Zero(t, TopicAccuracy{Topic: "x"}.Percent())
}

func TestMissedItemIDs(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	steps := []struct {
		item    string
		correct bool
	}{
		{"a", false},
		{"b", false},
		{"c", true},
		{"a", true},  // a recovered
		{"d", false}, // most recent miss
	}
	for i, st := range steps {
		state, ev := review("u1", st.item, "t", st.correct, at.Add(time.Duration(i)*time.Minute))
		_, err := repo.RecordReview(ctx, state, ev)
		require.NoError(t, err)
	}

	missed, err := repo.MissedItemIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b"}, missed)
}

func TestAnswerEventsLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		state, ev := review("u1", fmt.Sprintf("i%d", i), "t", true, at)
		_, err := repo.RecordReview(ctx, state, ev)
		require.NoError(t, err)
	}

	events, err := repo.AnswerEvents(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "i3", events[0].ItemID)
	assert.Equal(t, "i4", events[1].ItemID)
}

func TestResetUser(t *testing.T) {
	s := openTestStore(t)
	repo := s.ReviewRepo()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, user := range []string{"u1", "u2"} {
		state, ev := review(user, "far-001", "leases", false, at)
		_, err := repo.RecordReview(ctx, state, ev)
		require.NoError(t, err)
	}

	require.NoError(t, repo.ResetUser(ctx, "u1"))

	states, err := repo.AllRepetitionStates(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, states)
	events, err := repo.AnswerEvents(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	states, err = repo.AllRepetitionStates(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, states, 1)
}
