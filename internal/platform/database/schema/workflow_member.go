package schema

// WorkflowMemberTable represents the 'workflow.member' table
type WorkflowMemberTable struct {
	Table              string
	ID                 string
	DiscordID          string
	CreditName         string
	Authority          string
	ReminderInterval   string
	BoardNotifications string
	StageNotifications string
	CreatedAt          string
	RemindedAt         string
}

// WorkflowMember is the schema definition for workflow.member
var WorkflowMember = WorkflowMemberTable{
	Table:              "workflow.member",
	ID:                 "id",
	DiscordID:          "discordid",
	CreditName:         "creditname",
	Authority:          "authority",
	ReminderInterval:   "reminderinterval",
	BoardNotifications: "boardnotifications",
	StageNotifications: "stagenotifications",
	CreatedAt:          "createdat",
	RemindedAt:         "remindedat",
}

func (t WorkflowMemberTable) Columns() []string {
	return []string{
		t.ID, t.DiscordID, t.CreditName, t.Authority, t.ReminderInterval,
		t.BoardNotifications, t.StageNotifications, t.CreatedAt, t.RemindedAt,
	}
}

// WorkflowMemberRetiredTable represents the 'workflow.memberretired' holding table
type WorkflowMemberRetiredTable struct {
	WorkflowMemberTable
	Roles     string
	Tier      string
	RetiredAt string
}

// WorkflowMemberRetired is the schema definition for workflow.memberretired
var WorkflowMemberRetired = WorkflowMemberRetiredTable{
	WorkflowMemberTable: func() WorkflowMemberTable {
		t := WorkflowMember
		t.Table = "workflow.memberretired"
		return t
	}(),
	Roles:     "roles",
	Tier:      "tier",
	RetiredAt: "retiredat",
}

func (t WorkflowMemberRetiredTable) Columns() []string {
	return append(t.WorkflowMemberTable.Columns(), t.Roles, t.Tier, t.RetiredAt)
}
