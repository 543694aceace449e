package progression

import (
	"time"

	"github.com/alexanderramin/rapport/internal/domain"
)

// ClassifyOutreach derives the display status of an outreach. Due dates are
// compared by calendar day in now's location.
func ClassifyOutreach(status domain.OutreachStatus, due, now time.Time) domain.OutreachDisplayStatus {
	if status == domain.OutreachCompleted {
		return domain.DisplayCompleted
	}
	dueDay := startOfDay(due.In(now.Location()))
	today := startOfDay(now)
	switch {
	case dueDay.Before(today):
		return domain.DisplayOverdue
	case dueDay.Equal(today):
		return domain.DisplayDueToday
	default:
		return domain.DisplayScheduled
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
