package models

import "strings"

// Target names one of the two physical representations of the event
// sequence.
type Target string

const (
	TargetEvents Target = "json"
	TargetRowLog Target = "csv"
)

// ParseTarget accepts the short source names used by the HTTP layer as
// well as the descriptive ones.
func ParseTarget(s string) (Target, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "events", "list":
		return TargetEvents, true
	case "csv", "rowlog", "rows":
		return TargetRowLog, true
	}
	return "", false
}
