package dto

import (
	"time"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// SubmissionContent is what a student hands in: an uploaded artifact, a text note, or both.
type SubmissionContent struct {
	ArtifactRef string `json:"artifact_ref" validate:"omitempty,max=512"`
	TextNote    string `json:"text_note" validate:"omitempty,max=20000"`
}

// SubmitOnBehalfRequest is used by staff filing a submission for a student.
type SubmitOnBehalfRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
	SubmissionContent
}

// GradeRequest records a grade for a submission.
type GradeRequest struct {
	Grade    string  `json:"grade" validate:"required,max=32"`
	Feedback *string `json:"feedback" validate:"omitempty,max=4000"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint       `json:"id"`
	AssignmentID uint       `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	SubmittedOn  time.Time  `json:"submitted_on"`
	SubmittedBy  string     `json:"submitted_by"`
	OnBehalf     bool       `json:"on_behalf"`
	ArtifactRef  *string    `json:"artifact_ref"`
	TextNote     *string    `json:"text_note"`
	Grade        *string    `json:"grade"`
	Feedback     *string    `json:"feedback"`
	GradedBy     *string    `json:"graded_by"`
	GradedAt     *time.Time `json:"graded_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		StudentName:  model.StudentName,
		SubmittedOn:  model.SubmittedOn,
		SubmittedBy:  model.SubmittedBy,
		OnBehalf:     model.OnBehalf(),
		ArtifactRef:  model.ArtifactRef,
		TextNote:     model.TextNote,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// AssignmentReviewResponse is the staff view of one assignment.
type AssignmentReviewResponse struct {
	Assignment   AssignmentResponse    `json:"assignment"`
	Submitted    []SubmissionResponse  `json:"submitted"`
	NotSubmitted []RosterEntryResponse `json:"not_submitted"`
}

// StudentAssignmentResponse is the student view of one assignment.
type StudentAssignmentResponse struct {
	Assignment AssignmentResponse  `json:"assignment"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}

// UploadResponse describes a stored artifact.
type UploadResponse struct {
	ArtifactRef string `json:"artifact_ref"`
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Checksum    string `json:"checksum"`
}
