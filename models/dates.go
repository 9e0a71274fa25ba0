// ABOUTME: Date formats written into CRM cells
// ABOUTME: Stamped dates use YY_MM_DD, caller-supplied due dates use YYYY-MM-DD
package models

import "time"

const (
	// DateLayout is used for creation, scoring, last-contact and task dates.
	DateLayout = "06_01_02"
	// StampLayout is used for activity timestamps.
	StampLayout = "06_01_02 15:04"
	// DueLayout is the format callers use for due and expected-close dates.
	DueLayout = "2006-01-02"
)

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatStamp(t time.Time) string {
	return t.Format(StampLayout)
}

// ValidDue reports whether s is a YYYY-MM-DD date.
func ValidDue(s string) bool {
	_, err := time.Parse(DueLayout, s)
	return err == nil
}
