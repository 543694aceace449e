package domain

type PathStatus string

const (
	PathActive  PathStatus = "active"
	PathEnded   PathStatus = "ended"
	PathSkipped PathStatus = "skipped"
)

type OutreachStatus string

const (
	OutreachPending   OutreachStatus = "pending"
	OutreachCompleted OutreachStatus = "completed"
)

// OutreachDisplayStatus is derived at read time from status, due date and the
// current time. It is never stored.
type OutreachDisplayStatus string

const (
	DisplayCompleted OutreachDisplayStatus = "Completed"
	DisplayOverdue   OutreachDisplayStatus = "Overdue"
	DisplayDueToday  OutreachDisplayStatus = "Due Today"
	DisplayScheduled OutreachDisplayStatus = "Scheduled"
)

// ValidPathStatuses is the canonical set of accepted path instance statuses.
var ValidPathStatuses = map[string]bool{
	"active": true, "ended": true, "skipped": true,
}

// ValidOutreachStatuses is the canonical set of accepted outreach statuses.
var ValidOutreachStatuses = map[string]bool{
	"pending": true, "completed": true,
}
