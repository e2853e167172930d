package dto

import (
	"time"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	CourseID    uint   `json:"course_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
	MaxMarks    int    `json:"max_marks" validate:"required,gt=0,lte=1000"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	MaxMarks    int       `json:"max_marks"`
	DaysLeft    int       `json:"days_left"`
	Urgency     string    `json:"urgency"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAssignmentResponse converts a model into a DTO relative to now.
func NewAssignmentResponse(model models.Assignment, now time.Time) AssignmentResponse {
	days := model.DaysLeft(now)
	return AssignmentResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate.UTC().Format(models.DueDateLayout),
		MaxMarks:    model.MaxMarks,
		DaysLeft:    days,
		Urgency:     string(models.ClassifyDaysLeft(days)),
		CreatedAt:   model.CreatedAt,
	}
}

// Refresh recomputes DaysLeft and Urgency from DueDate relative to now.
func (r *AssignmentResponse) Refresh(now time.Time) {
	due, err := models.ParseDueDate(r.DueDate)
	if err != nil {
		return
	}
	r.DaysLeft = models.DaysLeft(due, now)
	r.Urgency = string(models.ClassifyDaysLeft(r.DaysLeft))
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, now time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, now))
	}

	return responses
}
