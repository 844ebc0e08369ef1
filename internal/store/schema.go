package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names of the typed store schema.
const (
	subjectsTable        = "subjects"
	tasksTable           = "study_tasks"
	completedTable       = "completed_tasks"
	quizResultsTable     = "quiz_results"
	settingsTable        = "settings"
	llmEventsTable       = "llm_request_events"
	colID                = "id"
	colSubjectID         = "subject_id"
	colTaskID            = "task_id"
	colPosition          = "position"
	colKey               = "key"
	colValue             = "value"
	settingAuthFlag      = "auth_flag"
	settingSchemaVersion = "schema_version"
)

var (
	subjectsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "summary", Type: field.TypeString, Size: 2147483647},
		{Name: "cover_image", Type: field.TypeString, Size: 2147483647, Nullable: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: colPosition, Type: field.TypeInt, Default: 0},
	}
	subjectsTableDef = &schema.Table{
		Name:       subjectsTable,
		Columns:    subjectsColumns,
		PrimaryKey: []*schema.Column{subjectsColumns[0]},
	}

	tasksColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSubjectID, Type: field.TypeString},
		{Name: colTaskID, Type: field.TypeString},
		{Name: "day", Type: field.TypeInt},
		{Name: "label", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Size: 2147483647},
		{Name: colPosition, Type: field.TypeInt},
	}
	tasksTableDef = &schema.Table{
		Name:       tasksTable,
		Columns:    tasksColumns,
		PrimaryKey: []*schema.Column{tasksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "study_tasks_subjects_tasks",
				Columns:    []*schema.Column{tasksColumns[1]},
				RefColumns: []*schema.Column{subjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "studytask_subject_id_task_id",
				Unique:  true,
				Columns: []*schema.Column{tasksColumns[1], tasksColumns[2]},
			},
		},
	}

	completedColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSubjectID, Type: field.TypeString},
		{Name: colTaskID, Type: field.TypeString},
	}
	completedTableDef = &schema.Table{
		Name:       completedTable,
		Columns:    completedColumns,
		PrimaryKey: []*schema.Column{completedColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "completed_tasks_subjects_completed",
				Columns:    []*schema.Column{completedColumns[1]},
				RefColumns: []*schema.Column{subjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "completedtask_subject_id_task_id",
				Unique:  true,
				Columns: []*schema.Column{completedColumns[1], completedColumns[2]},
			},
		},
	}

	quizResultsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSubjectID, Type: field.TypeString},
		{Name: colTaskID, Type: field.TypeString},
		{Name: "score", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "percentage", Type: field.TypeInt},
		{Name: "passed", Type: field.TypeBool},
		{Name: "attempted_at", Type: field.TypeInt64},
	}
	quizResultsTableDef = &schema.Table{
		Name:       quizResultsTable,
		Columns:    quizResultsColumns,
		PrimaryKey: []*schema.Column{quizResultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_results_subjects_results",
				Columns:    []*schema.Column{quizResultsColumns[1]},
				RefColumns: []*schema.Column{subjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizresult_subject_id_task_id",
				Unique:  true,
				Columns: []*schema.Column{quizResultsColumns[1], quizResultsColumns[2]},
			},
		},
	}

	settingsColumns = []*schema.Column{
		{Name: colKey, Type: field.TypeString},
		{Name: colValue, Type: field.TypeString},
	}
	settingsTableDef = &schema.Table{
		Name:       settingsTable,
		Columns:    settingsColumns,
		PrimaryKey: []*schema.Column{settingsColumns[0]},
	}

	llmEventsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTableDef = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Columns: []*schema.Column{llmEventsColumns[1]},
			},
			{
				Name:    "llmrequestevent_purpose",
				Columns: []*schema.Column{llmEventsColumns[4]},
			},
		},
	}

	// tables lists every table in migration order.
	tables = []*schema.Table{
		subjectsTableDef,
		tasksTableDef,
		completedTableDef,
		quizResultsTableDef,
		settingsTableDef,
		llmEventsTableDef,
	}
)

func init() {
	tasksTableDef.ForeignKeys[0].RefTable = subjectsTableDef
	completedTableDef.ForeignKeys[0].RefTable = subjectsTableDef
	quizResultsTableDef.ForeignKeys[0].RefTable = subjectsTableDef
}
