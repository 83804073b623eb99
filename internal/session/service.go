package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rob637/passcpa-sub012/internal/content"
	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
	"github.com/rob637/passcpa-sub012/internal/store"
)

// ContentSource supplies item pools and item metadata.
type ContentSource interface {
	Pool(ctx context.Context, f content.Filter) ([]selector.Item, error)
	Item(ctx context.Context, id string) (*store.ItemRecord, error)
}

// Deps are the collaborators of a Service. Logger and Now are optional.
type Deps struct {
	Content   ContentSource
	Reviews   store.ReviewRepo
	Selector  *selector.Selector
	Scheduler *spacedrep.Scheduler
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service builds sessions and records ratings for learners.
type Service struct {
	content   ContentSource
	reviews   store.ReviewRepo
	selector  *selector.Selector
	scheduler *spacedrep.Scheduler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service from d.
func NewService(d Deps) *Service {
	s := &Service{
		content:   d.Content,
		reviews:   d.Reviews,
		selector:  d.Selector,
		scheduler: d.Scheduler,
		logger:    d.Logger,
		now:       d.Now,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Build selects the items for a new session. Only a failure to load the item
// pool is returned; missing learner history degrades to an unweighted
// selection.
func (s *Service) Build(ctx context.Context, req Request) (*Session, error) {
	count := req.Count
	pool, err := s.content.Pool(ctx, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		CreatedAt: now,
		Filter:    req.Filter,
		PoolSize:  len(pool),
	}
	log := s.logger.With("user_id", req.UserID, "session_id", sess.ID)

	var dueIDs []string
	records, err := s.reviews.RepetitionStates(ctx, req.UserID, itemIDs(pool))
	if err != nil {
		log.Warn("repetition states unavailable", "error", err)
	} else {
		dueIDs = spacedrep.DueIDs(statesFromRecords(records), now)
	}

	var stats []selector.TopicStat
	acc, err := s.reviews.TopicAccuracy(ctx, req.UserID, store.ItemFilter{Course: req.Filter.Course, Section: req.Filter.Section})
	if err != nil {
		log.Warn("topic stats unavailable", "error", err)
	} else {
		stats = topicStats(acc)
	}

	missed, err := s.reviews.MissedItemIDs(ctx, req.UserID)
	if err != nil {
		log.Warn("missed items unavailable", "error", err)
		missed = nil
	}

	sess.Selection = s.selector.Select(pool, count, selector.Options{
		ExcludeIDs:          req.ExcludeIDs,
		PreviouslyMissedIDs: missed,
		DueIDs:              dueIDs,
		TopicStats:          stats,
	})

	counts := sess.Selection.Counts()
	log.Debug("session built",
		"requested", count,
		"selected", sess.Selection.Len(),
		"pool", len(pool),
		"missed", counts[selector.ReasonMissed],
		"due", counts[selector.ReasonDue],
		"weak_area", counts[selector.ReasonWeakArea],
		"fresh", counts[selector.ReasonFresh],
	)
	return sess, nil
}

// Rate schedules the next review of resp.ItemID and stores the answer.
func (s *Service) Rate(ctx context.Context, resp Response) (spacedrep.RepetitionState, error) {
	if !resp.Rating.Valid() {
		return spacedrep.RepetitionState{}, fmt.Errorf("rate %s: %w: %d", resp.ItemID, spacedrep.ErrUnknownRating, resp.Rating)
	}

	item, err := s.content.Item(ctx, resp.ItemID)
	if err != nil {
		return spacedrep.RepetitionState{}, fmt.Errorf("rate %s: %w", resp.ItemID, err)
	}

	records, err := s.reviews.RepetitionStates(ctx, resp.UserID, []string{item.ID})
	if err != nil {
		return spacedrep.RepetitionState{}, fmt.Errorf("rate %s: %w", item.ID, err)
	}
	var current *spacedrep.RepetitionState
	if r, ok := records[item.ID]; ok {
		current = stateFromRecord(r)
	}

	now := s.now()
	next := s.scheduler.Next(current, resp.Rating, now)
	next.ItemID = item.ID

	_, err = s.reviews.RecordReview(ctx, recordFromState(resp.UserID, next), store.AnswerEventData{
		UserID:     resp.UserID,
		SessionID:  resp.SessionID,
		ItemID:     item.ID,
		Course:     item.Course,
		Section:    item.Section,
		Topic:      item.Topic,
		Rating:     resp.Rating.String(),
		Correct:    resp.Correct(),
		AnsweredAt: now,
	})
	if err != nil {
		return spacedrep.RepetitionState{}, fmt.Errorf("rate %s: %w", item.ID, err)
	}

	s.logger.Debug("item rated",
		"user_id", resp.UserID,
		"session_id", resp.SessionID,
		"item_id", item.ID,
		"rating", resp.Rating.String(),
		"interval", next.Interval,
	)
	return next, nil
}

// Preview returns the outcome of each rating for itemID without storing
// anything.
func (s *Service) Preview(ctx context.Context, userID, itemID string) (map[spacedrep.Rating]spacedrep.RepetitionState, error) {
	records, err := s.reviews.RepetitionStates(ctx, userID, []string{itemID})
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", itemID, err)
	}
	var current *spacedrep.RepetitionState
	if r, ok := records[itemID]; ok {
		current = stateFromRecord(r)
	}
	return s.scheduler.Preview(current, s.now()), nil
}

// Stats summarizes the learner's progress over the pool matching f.
func (s *Service) Stats(ctx context.Context, userID string, f content.Filter) (Overview, error) {
	pool, err := s.content.Pool(ctx, f)
	if err != nil {
		return Overview{}, fmt.Errorf("stats: %w", err)
	}

	var (
		records map[string]store.RepetitionRecord
		acc     []store.TopicAccuracy
		missed  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.reviews.RepetitionStates(gctx, userID, itemIDs(pool))
		return err
	})
	g.Go(func() error {
		var err error
		acc, err = s.reviews.TopicAccuracy(gctx, userID, store.ItemFilter{Course: f.Course, Section: f.Section})
		return err
	})
	g.Go(func() error {
		var err error
		missed, err = s.reviews.MissedItemIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, fmt.Errorf("stats: %w", err)
	}

	entries := make([]spacedrep.Entry, 0, len(pool))
	inPool := make(map[string]bool, len(pool))
	for _, it := range pool {
		inPool[it.ID] = true
		e := spacedrep.Entry{ItemID: it.ID}
		if r, ok := records[it.ID]; ok {
			e.State = stateFromRecord(r)
		}
		entries = append(entries, e)
	}

	weak := make(map[string]bool)
	for _, ts := range selector.WeakTopics(topicStats(acc), s.selector.Config()) {
		weak[ts.Topic] = true
	}
	topics := make([]TopicSummary, 0, len(acc))
	for _, a := range acc {
		topics = append(topics, TopicSummary{
			Topic:     a.Topic,
			Attempted: a.Attempted,
			Correct:   a.Correct,
			Accuracy:  a.Percent(),
			Weak:      weak[a.Topic],
		})
	}

	var missedInPool int
	for _, id := range missed {
		if inPool[id] {
			missedInPool++
		}
	}

	return Overview{
		Study:  spacedrep.StudyStats(entries, s.now()),
		Topics: topics,
		Missed: missedInPool,
	}, nil
}

// Due lists reviewed items in the pool matching f that are due now, most
// overdue first.
func (s *Service) Due(ctx context.Context, userID string, f content.Filter) ([]DueItem, error) {
	pool, err := s.content.Pool(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("due: %w", err)
	}
	records, err := s.reviews.RepetitionStates(ctx, userID, itemIDs(pool))
	if err != nil {
		return nil, fmt.Errorf("due: %w", err)
	}

	now := s.now()
	states := statesFromRecords(records)
	byID := make(map[string]selector.Item, len(pool))
	for _, it := range pool {
		byID[it.ID] = it
	}

	ids := spacedrep.DueIDs(states, now)
	due := make([]DueItem, 0, len(ids))
	for _, id := range ids {
		st := states[id]
		due = append(due, DueItem{Item: byID[id], State: *st, OverdueDays: st.OverdueDays(now)})
	}
	return due, nil
}

// History returns up to limit of the learner's latest answers, oldest
// first. limit <= 0 returns everything.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]store.AnswerEventRecord, error) {
	events, err := s.reviews.AnswerEvents(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return events, nil
}

// Reset deletes the learner's review history.
func (s *Service) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("reset: user is required")
	}
	if err := s.reviews.ResetUser(ctx, userID); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Info("learner history reset", "user_id", userID)
	return nil
}
