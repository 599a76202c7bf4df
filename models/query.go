package models

// ReportQuery narrows report listings. Empty fields do not filter. From and
// To are inclusive YYYY-MM-DD dates.
type ReportQuery struct {
	ManagerUID string
	From       string
	To         string
}

// Matches reports whether a report with the given manager and date passes q.
// Stored dates compare correctly as strings.
func (q ReportQuery) Matches(managerUID, date string) bool {
	if q.ManagerUID != "" && q.ManagerUID != managerUID {
		return false
	}
	if q.From != "" && date < q.From {
		return false
	}
	if q.To != "" && date > q.To {
		return false
	}
	return true
}
