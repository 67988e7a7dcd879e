package schema

// WorkflowSubscriptionTable represents the 'workflow.seriessubscription' table
type WorkflowSubscriptionTable struct {
	Table        string
	MemberID     string
	SeriesID     string
	SubscribedAt string
}

// WorkflowSubscription is the schema definition for workflow.seriessubscription
var WorkflowSubscription = WorkflowSubscriptionTable{
	Table:        "workflow.seriessubscription",
	MemberID:     "memberid",
	SeriesID:     "seriesid",
	SubscribedAt: "subscribedat",
}

func (t WorkflowSubscriptionTable) Columns() []string {
	return []string{t.MemberID, t.SeriesID, t.SubscribedAt}
}
