package dto

import "github.com/noah-isme/eduportal-api/internal/models"

// CourseResponse is a course card.
type CourseResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Instructor  string `json:"instructor"`
	Credits     int    `json:"credits"`
	Semester    string `json:"semester"`
	Description string `json:"description"`
}

// RosterEntryResponse is one enrolled student.
type RosterEntryResponse struct {
	CourseID    uint   `json:"course_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
}

// RosterResponse lists the students of a course.
type RosterResponse struct {
	Course   CourseResponse        `json:"course"`
	Students []RosterEntryResponse `json:"students"`
}

// BookFilter describes library query parameters.
type BookFilter struct {
	Kind     string `query:"kind" validate:"omitempty,oneof=textbook reference"`
	CourseID *uint  `query:"course_id"`
	Search   string `query:"q" validate:"omitempty,max=128"`
}

// LibraryResponse groups books the way the library view shows them.
type LibraryResponse struct {
	CourseBooks    []models.Book `json:"course_books"`
	ReferenceBooks []models.Book `json:"reference_books"`
}

// WorkbooksResponse lists materials for the selected course.
type WorkbooksResponse struct {
	Courses   []CourseResponse  `json:"courses"`
	Selected  *CourseResponse   `json:"selected,omitempty"`
	Materials []models.Material `json:"materials"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Name:        model.Name,
		Instructor:  model.Instructor,
		Credits:     model.Credits,
		Semester:    model.Semester,
		Description: model.Description,
	}
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}

// NewRosterEntryResponse converts a roster entry.
func NewRosterEntryResponse(entry models.RosterEntry) RosterEntryResponse {
	return RosterEntryResponse{
		CourseID:    entry.CourseID,
		StudentID:   entry.StudentID,
		StudentName: entry.StudentName,
	}
}

// NewRosterEntryResponseSlice converts roster entries.
func NewRosterEntryResponseSlice(entries []models.RosterEntry) []RosterEntryResponse {
	responses := make([]RosterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewRosterEntryResponse(entry))
	}
	return responses
}
