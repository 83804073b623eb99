package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var itemColumns = []string{"id", "course", "section", "topic", "difficulty", "kind", "prompt", "answer"}

// itemRepo implements ItemRepo using ent's SQL builder.
type itemRepo struct {
	db *sql.DB
}

func (r *itemRepo) Upsert(ctx context.Context, items []ItemRecord) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for _, it := range items {
		kind := it.Kind
		if kind == "" {
			kind = "question"
		}
		query, args := builder.Insert(tableItems).
			Columns(append(itemColumns, "updated_at")...).
			Values(it.ID, it.Course, it.Section, it.Topic, it.Difficulty, kind, it.Prompt, it.Answer, now).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert item %q: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (r *itemRepo) Query(ctx context.Context, f ItemFilter) ([]ItemRecord, error) {
	sel := builder.Select(itemColumns...).From(entsql.Table(tableItems))
	if p := itemPredicate(f); p != nil {
		sel.Where(p)
	}
	query, args := sel.OrderBy("id").Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *itemRepo) Get(ctx context.Context, id string) (*ItemRecord, error) {
	query, args := builder.Select(itemColumns...).
		From(entsql.Table(tableItems)).
		Where(entsql.EQ("id", id)).
		Query()

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) Count(ctx context.Context) (int, error) {
	query, args := builder.Select(entsql.Count("*")).From(entsql.Table(tableItems)).Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// itemPredicate builds the WHERE clause for f, or nil when f is empty.
func itemPredicate(f ItemFilter) *entsql.Predicate {
	var preds []*entsql.Predicate
	if f.Course != "" {
		preds = append(preds, entsql.EQ("course", f.Course))
	}
	if f.Section != "" {
		preds = append(preds, entsql.EQ("section", f.Section))
	}
	if f.Topic != "" {
		preds = append(preds, entsql.EQ("topic", f.Topic))
	}
	if f.Difficulty != "" {
		preds = append(preds, entsql.EQ("difficulty", f.Difficulty))
	}
	if len(preds) == 0 {
		return nil
	}
	return entsql.And(preds...)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (ItemRecord, error) {
	var it ItemRecord
	err := row.Scan(&it.ID, &it.Course, &it.Section, &it.Topic, &it.Difficulty, &it.Kind, &it.Prompt, &it.Answer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return it, err
		}
		return it, fmt.Errorf("scan item: %w", err)
	}
	return it, nil
}
