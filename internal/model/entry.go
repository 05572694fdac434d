package model

import "time"

// DateLayout is the format of TimeEntry.Date
const DateLayout = "2006-01-02"

// TimeEntry is one completed timing interval. Entries are written once, when a
// timer stops, and never updated.
//
// Date is the calendar day of StartedAt in the tracking location. An interval
// that crosses midnight is attributed entirely to the day it started on.
type TimeEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	TaskID          *string   `json:"task_id"`
	ProjectID       *string   `json:"project_id,omitempty"`
	Description     string    `json:"description"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

// EntryDate returns the ledger date for an interval starting at t
func EntryDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// EntryDescription is the description written for a task's time entry
func EntryDescription(title string) string {
	return "Work on: " + title
}
