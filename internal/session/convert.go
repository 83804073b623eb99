package session

import (
	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
	"github.com/rob637/passcpa-sub012/internal/store"
)

func stateFromRecord(r store.RepetitionRecord) *spacedrep.RepetitionState {
	return &spacedrep.RepetitionState{
		ItemID:      r.ItemID,
		Interval:    r.IntervalDays,
		EaseFactor:  r.EaseFactor,
		Repetitions: r.Repetitions,
		LastReview:  r.LastReview,
		NextReview:  r.NextReview,
	}
}

func recordFromState(userID string, s spacedrep.RepetitionState) store.RepetitionRecord {
	return store.RepetitionRecord{
		UserID:       userID,
		ItemID:       s.ItemID,
		IntervalDays: s.Interval,
		EaseFactor:   s.EaseFactor,
		Repetitions:  s.Repetitions,
		LastReview:   s.LastReview,
		NextReview:   s.NextReview,
	}
}

func statesFromRecords(records map[string]store.RepetitionRecord) map[string]*spacedrep.RepetitionState {
	states := make(map[string]*spacedrep.RepetitionState, len(records))
	for id, r := range records {
		states[id] = stateFromRecord(r)
	}
	return states
}

func topicStats(acc []store.TopicAccuracy) []selector.TopicStat {
	stats := make([]selector.TopicStat, 0, len(acc))
	for _, a := range acc {
		stats = append(stats, selector.TopicStat{
			Topic:     a.Topic,
			Accuracy:  a.Percent(),
			Attempted: a.Attempted,
		})
	}
	return stats
}

func itemIDs(items []selector.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
