package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// maxInArgs bounds the number of bind variables per IN clause.
const maxInArgs = 500

var repetitionColumns = []string{"item_id", "interval_days", "ease_factor", "repetitions", "last_review", "next_review"}

var answerColumns = []string{"sequence", "user_id", "session_id", "item_id", "course", "section", "topic", "rating", "correct", "answered_at"}

// reviewRepo implements ReviewRepo using ent's SQL builder.
type reviewRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *reviewRepo) RepetitionStates(ctx context.Context, userID string, itemIDs []string) (map[string]RepetitionRecord, error) {
	result := make(map[string]RepetitionRecord, len(itemIDs))
	for start := 0; start < len(itemIDs); start += maxInArgs {
		end := min(start+maxInArgs, len(itemIDs))
		args := make([]any, 0, end-start)
		for _, id := range itemIDs[start:end] {
			args = append(args, id)
		}
		pred := entsql.And(entsql.EQ("user_id", userID), entsql.In("item_id", args...))
		if err := r.queryStates(ctx, userID, pred, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *reviewRepo) AllRepetitionStates(ctx context.Context, userID string) (map[string]RepetitionRecord, error) {
	result := make(map[string]RepetitionRecord)
	if err := r.queryStates(ctx, userID, entsql.EQ("user_id", userID), result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *reviewRepo) queryStates(ctx context.Context, userID string, pred *entsql.Predicate, into map[string]RepetitionRecord) error {
	query, args := builder.Select(repetitionColumns...).
		From(entsql.Table(tableRepetitions)).
		Where(pred).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query repetition states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := RepetitionRecord{UserID: userID}
		var last, next int64
		if err := rows.Scan(&rec.ItemID, &rec.IntervalDays, &rec.EaseFactor, &rec.Repetitions, &last, &next); err != nil {
			return fmt.Errorf("scan repetition state: %w", err)
		}
		rec.LastReview = fromMillis(last)
		rec.NextReview = fromMillis(next)
		into[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate repetition states: %w", err)
	}
	return nil
}

func (r *reviewRepo) RecordReview(ctx context.Context, state RepetitionRecord, event AnswerEventData) (int64, error) {
	if state.UserID == "" || state.ItemID == "" {
		return 0, fmt.Errorf("record review: user and item are required")
	}

	// The counter uses the store's only connection, so draw the sequence
	// before the transaction claims it.
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin review: %w", err)
	}
	defer tx.Rollback()

	query, args := builder.Insert(tableRepetitions).
		Columns("user_id", "item_id", "interval_days", "ease_factor", "repetitions", "last_review", "next_review").
		Values(state.UserID, state.ItemID, state.IntervalDays, state.EaseFactor, state.Repetitions,
			toMillis(state.LastReview), toMillis(state.NextReview)).
		OnConflict(
			entsql.ConflictColumns("user_id", "item_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save repetition state: %w", err)
	}

	correct := 0
	if event.Correct {
		correct = 1
	}
	query, args = builder.Insert(tableAnswers).
		Columns(answerColumns...).
		Values(seqNum, event.UserID, event.SessionID, event.ItemID, event.Course, event.Section, event.Topic,
			event.Rating, correct, toMillis(event.AnsweredAt)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("save answer event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit review: %w", err)
	}
	return seqNum, nil
}

func (r *reviewRepo) TopicAccuracy(ctx context.Context, userID string, f ItemFilter) ([]TopicAccuracy, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if f.Course != "" {
		preds = append(preds, entsql.EQ("course", f.Course))
	}
	if f.Section != "" {
		preds = append(preds, entsql.EQ("section", f.Section))
	}

	query, args := builder.Select(
		"topic",
		entsql.As(entsql.Count("*"), "attempted"),
		entsql.As(entsql.Sum("correct"), "correct_count"),
	).
		From(entsql.Table(tableAnswers)).
		Where(entsql.And(preds...)).
		GroupBy("topic").
		OrderBy("topic").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topic accuracy: %w", err)
	}
	defer rows.Close()

	var result []TopicAccuracy
	for rows.Next() {
		var ta TopicAccuracy
		var correct sql.NullInt64
		if err := rows.Scan(&ta.Topic, &ta.Attempted, &correct); err != nil {
			return nil, fmt.Errorf("scan topic accuracy: %w", err)
		}
		ta.Correct = int(correct.Int64)
		result = append(result, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic accuracy: %w", err)
	}
	return result, nil
}

func (r *reviewRepo) MissedItemIDs(ctx context.Context, userID string) ([]string, error) {
	query, args := builder.Select("item_id", "correct").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query missed items: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var missed []string
	for rows.Next() {
		var itemID string
		var correct bool
		if err := rows.Scan(&itemID, &correct); err != nil {
			return nil, fmt.Errorf("scan missed item: %w", err)
		}
		// Rows arrive newest first; only the latest answer per item counts.
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		if !correct {
			missed = append(missed, itemID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate missed items: %w", err)
	}
	return missed, nil
}

func (r *reviewRepo) AnswerEvents(ctx context.Context, userID string, limit int) ([]AnswerEventRecord, error) {
	sel := builder.Select(answerColumns...).
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var events []AnswerEventRecord
	for rows.Next() {
		var ev AnswerEventRecord
		var answeredAt int64
		if err := rows.Scan(&ev.Sequence, &ev.UserID, &ev.SessionID, &ev.ItemID, &ev.Course, &ev.Section,
			&ev.Topic, &ev.Rating, &ev.Correct, &answeredAt); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		ev.AnsweredAt = fromMillis(answeredAt)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer events: %w", err)
	}

	// Reverse into sequence order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

func (r *reviewRepo) ResetUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{tableRepetitions, tableAnswers} {
		query, args := builder.Delete(table).Where(entsql.EQ("user_id", userID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}
