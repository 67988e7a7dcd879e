package schema

// WorkflowSeriesTable represents the 'workflow.series' table
type WorkflowSeriesTable struct {
	Table          string
	ID             string
	GroupID        string
	Name           string
	DriveLink      string
	StyleGuide     string
	MangaDexID     string
	MirrorKey      string
	Thumbnail      string
	BlockedTargets string
	IsArchived     string
	CreatedAt      string
}

// WorkflowSeries is the schema definition for workflow.series
var WorkflowSeries = WorkflowSeriesTable{
	Table:          "workflow.series",
	ID:             "id",
	GroupID:        "groupid",
	Name:           "name",
	DriveLink:      "drivelink",
	StyleGuide:     "styleguide",
	MangaDexID:     "mangadexid",
	MirrorKey:      "mirrorkey",
	Thumbnail:      "thumbnail",
	BlockedTargets: "blockedtargets",
	IsArchived:     "isarchived",
	CreatedAt:      "createdat",
}

func (t WorkflowSeriesTable) Columns() []string {
	return []string{
		t.ID, t.GroupID, t.Name, t.DriveLink, t.StyleGuide, t.MangaDexID,
		t.MirrorKey, t.Thumbnail, t.BlockedTargets, t.IsArchived, t.CreatedAt,
	}
}
