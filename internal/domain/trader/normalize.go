// Package trader turns free-text assignee values into canonical trader labels.
package trader

import (
	"regexp"
	"strings"
)

// Sentinel values of the assignee column.
const (
	UnassignedMarker = "-"
	Unassigned       = "Unassigned"
)

var (
	digitRuns   = regexp.MustCompile(`\p{Nd}+`)
	parenthesis = regexp.MustCompile(`\(.*\)`)
)

// Normalize strips digit runs, then the parenthesised part, then surrounding
// whitespace, and finally maps the "-" marker to Unassigned. The order
// matters for values such as "Smith (2)1". Normalize is idempotent.
func Normalize(assignee string) string {
	s := digitRuns.ReplaceAllString(assignee, "")
	s = parenthesis.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == UnassignedMarker {
		return Unassigned
	}
	return s
}
