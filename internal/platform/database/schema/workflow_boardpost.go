package schema

// WorkflowBoardPostTable represents the 'workflow.boardpost' table
type WorkflowBoardPostTable struct {
	Table       string
	ID          string
	MessageID   string
	ChannelID   string
	ChapterID   string
	SeriesJobID string
	SeriesID    string
	JobID       string
	MinTier     string
	CreatedAt   string
}

// WorkflowBoardPost is the schema definition for workflow.boardpost
var WorkflowBoardPost = WorkflowBoardPostTable{
	Table:       "workflow.boardpost",
	ID:          "id",
	MessageID:   "messageid",
	ChannelID:   "channelid",
	ChapterID:   "chapterid",
	SeriesJobID: "seriesjobid",
	SeriesID:    "seriesid",
	JobID:       "jobid",
	MinTier:     "mintier",
	CreatedAt:   "createdat",
}

func (t WorkflowBoardPostTable) Columns() []string {
	return []string{
		t.ID, t.MessageID, t.ChannelID, t.ChapterID, t.SeriesJobID,
		t.SeriesID, t.JobID, t.MinTier, t.CreatedAt,
	}
}
