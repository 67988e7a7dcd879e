package schema

// WorkflowSeriesJobTable represents the 'workflow.seriesjob' table
type WorkflowSeriesJobTable struct {
	Table    string
	ID       string
	SeriesID string
	JobID    string
	Position string
}

// WorkflowSeriesJob is the schema definition for workflow.seriesjob
var WorkflowSeriesJob = WorkflowSeriesJobTable{
	Table:    "workflow.seriesjob",
	ID:       "id",
	SeriesID: "seriesid",
	JobID:    "jobid",
	Position: "position",
}

func (t WorkflowSeriesJobTable) Columns() []string {
	return []string{t.ID, t.SeriesID, t.JobID, t.Position}
}
