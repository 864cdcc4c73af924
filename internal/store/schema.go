package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the shape ent's migrate package expects. They are
// applied on Open with schema.NewMigrate, which only ever adds tables,
// columns and indexes.
var (
	// LearnersColumns holds the columns for the "learners" table.
	LearnersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "chapter", Type: field.TypeInt, Default: 1},
		{Name: "lesson", Type: field.TypeInt, Default: 1},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LearnersTable holds the schema information for the "learners" table.
	LearnersTable = &schema.Table{
		Name:       "learners",
		Columns:    LearnersColumns,
		PrimaryKey: []*schema.Column{LearnersColumns[0]},
	}

	// MistakesColumns holds the columns for the "mistakes" table.
	MistakesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "chapter", Type: field.TypeInt},
		{Name: "lesson", Type: field.TypeInt},
		{Name: "origin_lesson", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "question", Type: field.TypeString, Size: 2147483647},
		{Name: "learner_answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "correct_answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "feedback", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "code", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "output", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "errors", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "learner_id", Type: field.TypeInt},
	}
	// MistakesTable holds the schema information for the "mistakes" table.
	MistakesTable = &schema.Table{
		Name:       "mistakes",
		Columns:    MistakesColumns,
		PrimaryKey: []*schema.Column{MistakesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "mistakes_learners_mistakes",
				Columns:    []*schema.Column{MistakesColumns[15]},
				RefColumns: []*schema.Column{LearnersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "mistake_learner_id_chapter_origin_lesson",
				Unique:  false,
				Columns: []*schema.Column{MistakesColumns[15], MistakesColumns[3], MistakesColumns[5]},
			},
		},
	}

	// LessonContentsColumns holds the columns for the "lesson_contents" table.
	LessonContentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chapter", Type: field.TypeInt},
		{Name: "lesson", Type: field.TypeInt},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "learner_id", Type: field.TypeInt},
	}
	// LessonContentsTable holds the schema information for the "lesson_contents" table.
	LessonContentsTable = &schema.Table{
		Name:       "lesson_contents",
		Columns:    LessonContentsColumns,
		PrimaryKey: []*schema.Column{LessonContentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lesson_contents_learners_contents",
				Columns:    []*schema.Column{LessonContentsColumns[5]},
				RefColumns: []*schema.Column{LearnersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "lessoncontent_learner_id_chapter_lesson",
				Unique:  true,
				Columns: []*schema.Column{LessonContentsColumns[5], LessonContentsColumns[1], LessonContentsColumns[2]},
			},
		},
	}

	// LessonScoresColumns holds the columns for the "lesson_scores" table.
	LessonScoresColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chapter", Type: field.TypeInt},
		{Name: "lesson", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "learner_id", Type: field.TypeInt},
	}
	// LessonScoresTable holds the schema information for the "lesson_scores" table.
	LessonScoresTable = &schema.Table{
		Name:       "lesson_scores",
		Columns:    LessonScoresColumns,
		PrimaryKey: []*schema.Column{LessonScoresColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lesson_scores_learners_scores",
				Columns:    []*schema.Column{LessonScoresColumns[7]},
				RefColumns: []*schema.Column{LearnersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "lessonscore_learner_id_chapter_lesson",
				Unique:  true,
				Columns: []*schema.Column{LessonScoresColumns[7], LessonScoresColumns[1], LessonScoresColumns[2]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[5]},
			},
			{
				Name:    "llmrequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[2]},
			},
		},
	}

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the single row counter shared by the
	// append-only tables.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		GlobalSequenceTable,
		LearnersTable,
		MistakesTable,
		LessonContentsTable,
		LessonScoresTable,
		LlmRequestEventsTable,
	}
)

func init() {
	MistakesTable.ForeignKeys[0].RefTable = LearnersTable
	LessonContentsTable.ForeignKeys[0].RefTable = LearnersTable
	LessonScoresTable.ForeignKeys[0].RefTable = LearnersTable
}
