package models

import (
	"math"
	"time"
)

// Urgency buckets a deadline by days remaining.
type Urgency string

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencySoon   Urgency = "soon"
	UrgencyNormal Urgency = "normal"
)

// DueDateLayout is the calendar date format used for assignment deadlines.
const DueDateLayout = "2006-01-02"

const day = 24 * time.Hour

// Assignment belongs to exactly one course and is immutable once created.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	MaxMarks    int       `gorm:"not null" json:"max_marks"`
	CreatedBy   string    `gorm:"size:64" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// DaysLeft returns ceil((due - now) / 1 day). Negative values mean the deadline passed.
func (a Assignment) DaysLeft(now time.Time) int {
	return DaysLeft(a.DueDate, now)
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// DaysLeft rounds the remaining time up to whole days.
func DaysLeft(due, now time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

// ClassifyDaysLeft maps days remaining onto the badge tiers. Boundaries are inclusive.
func ClassifyDaysLeft(days int) Urgency {
	switch {
	case days <= 1:
		return UrgencyUrgent
	case days <= 3:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// ParseDueDate reads a YYYY-MM-DD calendar date as UTC midnight.
func ParseDueDate(value string) (time.Time, error) {
	return time.ParseInLocation(DueDateLayout, value, time.UTC)
}
