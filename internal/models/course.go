package models

import "time"

// Course is static reference data for a taught course.
type Course struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Instructor  string        `gorm:"size:255" json:"instructor"`
	Credits     int           `json:"credits"`
	Semester    string        `gorm:"size:64" json:"semester"`
	Description string        `gorm:"type:text" json:"description"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Roster      []RosterEntry `json:"-"`
}

// RosterEntry enrols a student in a course.
type RosterEntry struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	CourseID    uint   `gorm:"not null;uniqueIndex:idx_roster_course_student" json:"course_id"`
	StudentID   string `gorm:"size:64;not null;uniqueIndex:idx_roster_course_student" json:"student_id"`
	StudentName string `gorm:"size:255;not null" json:"student_name"`
}
