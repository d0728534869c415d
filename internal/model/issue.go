package model

// IssueCode is the closed set of constraint-violation codes.
type IssueCode string

const (
	IssueTimeConflict    IssueCode = "TIME_CONFLICT"
	IssueDayOverload     IssueCode = "DAY_OVERLOAD"
	IssueOverBudget      IssueCode = "OVER_BUDGET"
	IssuePaceOverload    IssueCode = "PACE_OVERLOAD"
	IssueHoursViolation  IssueCode = "HOURS_VIOLATION"
	IssueBacktracking    IssueCode = "BACKTRACKING"
	IssueReservationRisk IssueCode = "RESERVATION_RISK"
)

// IssueSeverity ranks how strongly an issue blocks finalization. Only high
// severity keeps the repair loop running.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "high"
	SeverityMedium IssueSeverity = "medium"
	SeverityLow    IssueSeverity = "low"
)

// ValidationIssue is one typed finding from the constraint engine. Day is 0
// for trip-wide issues (OVER_BUDGET).
type ValidationIssue struct {
	Code        IssueCode     `json:"code"`
	Severity    IssueSeverity `json:"severity"`
	Message     string        `json:"message"`
	Day         int           `json:"day,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// HasHighSeverity reports whether any issue in the list is high severity.
func HasHighSeverity(issues []ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == SeverityHigh {
			return true
		}
	}
	return false
}
