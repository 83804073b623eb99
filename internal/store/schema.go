package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableItems       = "items"
	tableRepetitions = "repetition_states"
	tableAnswers     = "answer_events"
)

var (
	// itemsTableColumns holds the columns for the "items" table.
	itemsTableColumns = []*entschema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "course", Type: field.TypeString},
		{Name: "section", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "answer", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// itemsTable holds the schema information for the "items" table.
	itemsTable = &entschema.Table{
		Name:       tableItems,
		Columns:    itemsTableColumns,
		PrimaryKey: []*entschema.Column{itemsTableColumns[0]},
		Indexes: []*entschema.Index{
			{Name: "item_course_section", Columns: []*entschema.Column{itemsTableColumns[1], itemsTableColumns[2]}},
			{Name: "item_topic", Columns: []*entschema.Column{itemsTableColumns[3]}},
		},
	}

	// repetitionTableColumns holds the columns for the "repetition_states" table.
	// Times are epoch milliseconds; 0 means unset.
	repetitionTableColumns = []*entschema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "ease_factor", Type: field.TypeFloat64},
		{Name: "repetitions", Type: field.TypeInt},
		{Name: "last_review", Type: field.TypeInt64},
		{Name: "next_review", Type: field.TypeInt64},
	}
	// repetitionTable holds the schema information for the "repetition_states" table.
	repetitionTable = &entschema.Table{
		Name:       tableRepetitions,
		Columns:    repetitionTableColumns,
		PrimaryKey: []*entschema.Column{repetitionTableColumns[0], repetitionTableColumns[1]},
		Indexes: []*entschema.Index{
			{Name: "repetitionstate_user_id_next_review", Columns: []*entschema.Column{repetitionTableColumns[0], repetitionTableColumns[6]}},
		},
	}

	// answerTableColumns holds the columns for the "answer_events" table.
	answerTableColumns = []*entschema.Column{
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "user_id", Type: field.TypeString},
		{Name: "session_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "course", Type: field.TypeString},
		{Name: "section", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "rating", Type: field.TypeString},
		{Name: "correct", Type: field.TypeInt},
		{Name: "answered_at", Type: field.TypeInt64},
	}
	// answerTable holds the schema information for the "answer_events" table.
	answerTable = &entschema.Table{
		Name:       tableAnswers,
		Columns:    answerTableColumns,
		PrimaryKey: []*entschema.Column{answerTableColumns[0]},
		Indexes: []*entschema.Index{
			{Name: "answerevent_user_id_item_id", Columns: []*entschema.Column{answerTableColumns[1], answerTableColumns[3]}},
			{Name: "answerevent_user_id_topic", Columns: []*entschema.Column{answerTableColumns[1], answerTableColumns[6]}},
		},
	}

	// tables holds every table managed by auto-migration.
	tables = []*entschema.Table{itemsTable, repetitionTable, answerTable}
)

// migrate creates missing tables, columns and indexes. It never drops
// anything.
func migrate(ctx context.Context, db *sql.DB) error {
	m, err := entschema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
