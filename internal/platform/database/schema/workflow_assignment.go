package schema

// WorkflowAssignmentTable represents 'workflow.assignment' and its archive shadow
type WorkflowAssignmentTable struct {
	Table       string
	ID          string
	ChapterID   string
	SeriesJobID string
	AssignedTo  string
	Status      string
	Account     string
	CreatedAt   string
	AvailableAt string
	CompletedAt string
	RemindedAt  string
}

// WorkflowAssignment is the schema definition for workflow.assignment
var WorkflowAssignment = WorkflowAssignmentTable{
	Table:       "workflow.assignment",
	ID:          "id",
	ChapterID:   "chapterid",
	SeriesJobID: "seriesjobid",
	AssignedTo:  "assignedto",
	Status:      "status",
	Account:     "account",
	CreatedAt:   "createdat",
	AvailableAt: "availableat",
	CompletedAt: "completedat",
	RemindedAt:  "remindedat",
}

// WorkflowAssignmentArchive shares the live table's columns.
var WorkflowAssignmentArchive = func() WorkflowAssignmentTable {
	t := WorkflowAssignment
	t.Table = "workflow.assignmentarchive"
	return t
}()

func (t WorkflowAssignmentTable) Columns() []string {
	return []string{
		t.ID, t.ChapterID, t.SeriesJobID, t.AssignedTo, t.Status, t.Account,
		t.CreatedAt, t.AvailableAt, t.CompletedAt, t.RemindedAt,
	}
}
