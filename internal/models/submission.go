package models

import "time"

// Submission is the single live response of one student to one assignment.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    string     `gorm:"size:64;not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	StudentName  string     `gorm:"size:255;not null" json:"student_name"`
	SubmittedOn  time.Time  `gorm:"not null" json:"submitted_on"`
	SubmittedBy  string     `gorm:"size:64;not null" json:"submitted_by"`
	ArtifactRef  *string    `gorm:"size:512" json:"artifact_ref"`
	TextNote     *string    `gorm:"type:text" json:"text_note"`
	Grade        *string    `gorm:"size:32" json:"grade"`
	Feedback     *string    `gorm:"type:text" json:"feedback"`
	GradedBy     *string    `gorm:"size:64" json:"graded_by"`
	GradedAt     *time.Time `json:"graded_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsGraded reports whether a grade has been recorded.
func (s Submission) IsGraded() bool {
	return s.Grade != nil && *s.Grade != ""
}

// OnBehalf reports whether a staff member filed the submission for the student.
func (s Submission) OnBehalf() bool {
	return s.SubmittedBy != "" && s.SubmittedBy != s.StudentID
}
