package model

// ColumnID identifies one of the three fixed board columns. Columns are
// not persisted entities, only a partition key on cards.
type ColumnID string

const (
	ColumnTodo     ColumnID = "todo"
	ColumnProgress ColumnID = "progress"
	ColumnComplete ColumnID = "complete"
)

// ColumnIDs lists the columns in display order.
var ColumnIDs = []ColumnID{ColumnTodo, ColumnProgress, ColumnComplete}

// ColumnTitles maps column identifiers to their display labels.
var ColumnTitles = map[ColumnID]string{
	ColumnTodo:     "To Do",
	ColumnProgress: "In Progress",
	ColumnComplete: "Done",
}

func (c ColumnID) Valid() bool {
	_, ok := ColumnTitles[c]
	return ok
}
