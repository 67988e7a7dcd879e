package schema

// WorkflowJobTable represents the 'workflow.job' table (stage definitions)
type WorkflowJobTable struct {
	Table          string
	ID             string
	GroupID        string
	Name           string
	StageType      string
	RoleID         string
	BoardChannelID string
	CreatedAt      string
}

// WorkflowJob is the schema definition for workflow.job
var WorkflowJob = WorkflowJobTable{
	Table:          "workflow.job",
	ID:             "id",
	GroupID:        "groupid",
	Name:           "name",
	StageType:      "stagetype",
	RoleID:         "roleid",
	BoardChannelID: "boardchannelid",
	CreatedAt:      "createdat",
}

func (t WorkflowJobTable) Columns() []string {
	return []string{t.ID, t.GroupID, t.Name, t.StageType, t.RoleID, t.BoardChannelID, t.CreatedAt}
}
