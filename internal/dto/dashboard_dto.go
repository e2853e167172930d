package dto

// StudentDashboardResponse summarises a student's workload.
type StudentDashboardResponse struct {
	EnrolledCourses int                  `json:"enrolled_courses"`
	Submitted       int                  `json:"submitted"`
	Graded          int                  `json:"graded"`
	Pending         []AssignmentResponse `json:"pending"`
}

// AssignmentProgress counts submissions against the roster for one assignment.
type AssignmentProgress struct {
	Assignment   AssignmentResponse `json:"assignment"`
	Submitted    int                `json:"submitted"`
	NotSubmitted int                `json:"not_submitted"`
	Graded       int                `json:"graded"`
}

// StaffDashboardResponse summarises review workload for faculty and admins.
type StaffDashboardResponse struct {
	Courses     int                  `json:"courses"`
	Assignments []AssignmentProgress `json:"assignments"`
	Ungraded    int                  `json:"ungraded"`
}

// DashboardResponse wraps the role specific dashboard.
type DashboardResponse struct {
	Role    string                    `json:"role"`
	Student *StudentDashboardResponse `json:"student,omitempty"`
	Staff   *StaffDashboardResponse   `json:"staff,omitempty"`
}

// ProfileResponse is the profile view.
type ProfileResponse struct {
	Identity IdentityResponse  `json:"identity"`
	Status   string            `json:"status"`
	Details  map[string]string `json:"details"`
	Courses  []CourseResponse  `json:"courses,omitempty"`
}
