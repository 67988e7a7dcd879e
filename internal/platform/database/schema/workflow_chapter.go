package schema

// WorkflowChapterTable represents the 'workflow.chapter' table (work items)
type WorkflowChapterTable struct {
	Table      string
	ID         string
	SeriesID   string
	Name       string
	DriveLink  string
	IsArchived string
	CreatedAt  string
}

// WorkflowChapter is the schema definition for workflow.chapter
var WorkflowChapter = WorkflowChapterTable{
	Table:      "workflow.chapter",
	ID:         "id",
	SeriesID:   "seriesid",
	Name:       "name",
	DriveLink:  "drivelink",
	IsArchived: "isarchived",
	CreatedAt:  "createdat",
}

func (t WorkflowChapterTable) Columns() []string {
	return []string{t.ID, t.SeriesID, t.Name, t.DriveLink, t.IsArchived, t.CreatedAt}
}
