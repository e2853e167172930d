package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
)

func TestStudentSubmitAndStaffReview(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions", &asStudent,
		dto.SubmissionContent{TextNote: "lab notes"})
	require.Equal(t, http.StatusCreated, status, response.Message)

	var submission dto.SubmissionResponse
	decodeData(t, response, &submission)
	require.Equal(t, "P-1002", submission.StudentID)
	require.Equal(t, "Brian Lee", submission.StudentName)

	status, response = app.do(t, http.MethodGet, "/api/v1/assignments/1/submissions", &asFaculty, nil)
	require.Equal(t, http.StatusOK, status)
	var submitted []dto.SubmissionResponse
	decodeData(t, response, &submitted)
	require.Len(t, submitted, 3)
	require.Equal(t, "P-1001", submitted[0].StudentID)
	require.Equal(t, "P-1002", submitted[1].StudentID)

	status, response = app.do(t, http.MethodGet, "/api/v1/assignments/1/submissions/missing", &asFaculty, nil)
	require.Equal(t, http.StatusOK, status)
	var missing []dto.RosterEntryResponse
	decodeData(t, response, &missing)
	require.Empty(t, missing)
}

func TestSubmitErrors(t *testing.T) {
	app := newTestApp(t, appOptions{})
	outsider := actor{id: "M-2001", name: "Dinesh Rao", role: "student"}

	status, _ := app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions", &asStudent, dto.SubmissionContent{TextNote: "  "})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions", &outsider, dto.SubmissionContent{TextNote: "notes"})
	require.Equal(t, http.StatusForbidden, status)

	status, _ = app.do(t, http.MethodPost, "/api/v1/assignments/99/submissions", &asStudent, dto.SubmissionContent{TextNote: "notes"})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodPost, "/api/v1/assignments/abc/submissions", &asStudent, dto.SubmissionContent{TextNote: "notes"})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions", &asFaculty, dto.SubmissionContent{TextNote: "notes"})
	require.Equal(t, http.StatusForbidden, status)
}

func TestStudentCannotReviewSubmissions(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, _ := app.do(t, http.MethodGet, "/api/v1/assignments/1/submissions", &asStudent, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, _ = app.do(t, http.MethodPut, "/api/v1/assignments/1/submissions/P-1001/grade", &asStudent, dto.GradeRequest{Grade: "A"})
	require.Equal(t, http.StatusForbidden, status)
}

func TestSubmitOnBehalfAndGrade(t *testing.T) {
	app := newTestApp(t, appOptions{})
	require.NoError(t, app.db.Create(&models.UploadRecord{OwnerID: "F-01", FileName: "paper.pdf", Ref: "/files/P-1002/paper.pdf"}).Error)

	status, response := app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions/on-behalf", &asFaculty,
		dto.SubmitOnBehalfRequest{StudentID: "P-1002", SubmissionContent: dto.SubmissionContent{ArtifactRef: "/files/P-1002/paper.pdf"}})
	require.Equal(t, http.StatusCreated, status, response.Message)

	var submission dto.SubmissionResponse
	decodeData(t, response, &submission)
	require.True(t, submission.OnBehalf)
	require.Equal(t, "F-01", submission.SubmittedBy)

	feedback := "Well argued"
	status, response = app.do(t, http.MethodPut, "/api/v1/assignments/1/submissions/P-1002/grade", &asFaculty,
		dto.GradeRequest{Grade: "A-", Feedback: &feedback})
	require.Equal(t, http.StatusOK, status, response.Message)
	decodeData(t, response, &submission)
	require.NotNil(t, submission.Grade)
	require.Equal(t, "A-", *submission.Grade)

	status, _ = app.do(t, http.MethodPut, "/api/v1/assignments/2/submissions/M-2002/grade", &asAdmin, dto.GradeRequest{Grade: "B"})
	require.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodPut, "/api/v1/assignments/1/submissions/P-1002/grade", &asAdmin, dto.GradeRequest{})
	require.Equal(t, http.StatusBadRequest, status)

	status, response = app.do(t, http.MethodGet, "/api/v1/activity?action=submission.graded", &asAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	var entries []models.ActivityLog
	decodeData(t, response, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, "F-01", entries[0].ActorID)

	status, _ = app.do(t, http.MethodGet, "/api/v1/activity", &asFaculty, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestDashboardReflectsSubmission(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodGet, "/api/v1/dashboard", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard dto.DashboardResponse
	decodeData(t, response, &dashboard)
	require.NotNil(t, dashboard.Student)
	require.Equal(t, 1, dashboard.Student.EnrolledCourses)
	require.Len(t, dashboard.Student.Pending, 1)

	status, _ = app.do(t, http.MethodPost, "/api/v1/assignments/1/submissions", &asStudent, dto.SubmissionContent{TextNote: "done"})
	require.Equal(t, http.StatusCreated, status)

	status, response = app.do(t, http.MethodGet, "/api/v1/dashboard", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &dashboard)
	require.Empty(t, dashboard.Student.Pending)
	require.Equal(t, 1, dashboard.Student.Submitted)

	status, response = app.do(t, http.MethodGet, "/api/v1/dashboard", &asFaculty, nil)
	require.Equal(t, http.StatusOK, status)
	var staff dto.DashboardResponse
	decodeData(t, response, &staff)
	require.NotNil(t, staff.Staff)
	require.Equal(t, 4, staff.Staff.Courses)
}
