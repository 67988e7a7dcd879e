package schema

// WorkflowPublicationTable represents the 'workflow.publication' queue
type WorkflowPublicationTable struct {
	Table           string
	ID              string
	SeriesID        string
	ChapterID       string
	MangaID         string
	GroupIDs        string
	Volume          string
	ChapterNumber   string
	Title           string
	Language        string
	SourcePrefix    string
	MirrorKey       string
	RequestedBy     string
	ReportChannelID string
	DueAt           string
	CreatedAt       string
}

// WorkflowPublication is the schema definition for workflow.publication
var WorkflowPublication = WorkflowPublicationTable{
	Table:           "workflow.publication",
	ID:              "id",
	SeriesID:        "seriesid",
	ChapterID:       "chapterid",
	MangaID:         "mangaid",
	GroupIDs:        "groupids",
	Volume:          "volume",
	ChapterNumber:   "chapternumber",
	Title:           "title",
	Language:        "language",
	SourcePrefix:    "sourceprefix",
	MirrorKey:       "mirrorkey",
	RequestedBy:     "requestedby",
	ReportChannelID: "reportchannelid",
	DueAt:           "dueat",
	CreatedAt:       "createdat",
}

func (t WorkflowPublicationTable) Columns() []string {
	return []string{
		t.ID, t.SeriesID, t.ChapterID, t.MangaID, t.GroupIDs, t.Volume,
		t.ChapterNumber, t.Title, t.Language, t.SourcePrefix, t.MirrorKey,
		t.RequestedBy, t.ReportChannelID, t.DueAt, t.CreatedAt,
	}
}
