package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
)

func TestCoursesScopedToStudent(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodGet, "/api/v1/courses", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var courses []dto.CourseResponse
	decodeData(t, response, &courses)
	require.Len(t, courses, 1)
	require.Equal(t, "Physics 101", courses[0].Name)

	status, response = app.do(t, http.MethodGet, "/api/v1/courses", &asAdmin, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &courses)
	require.Len(t, courses, 4)

	status, _ = app.do(t, http.MethodGet, "/api/v1/courses/42", &asAdmin, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRosterRequiresStaff(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, _ := app.do(t, http.MethodGet, "/api/v1/courses/1/roster", &asStudent, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, response := app.do(t, http.MethodGet, "/api/v1/courses/1/roster", &asFaculty, nil)
	require.Equal(t, http.StatusOK, status)
	var roster dto.RosterResponse
	decodeData(t, response, &roster)
	require.Len(t, roster.Students, 3)
}

func TestMaterialsAndWorkbooks(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodGet, "/api/v1/courses/4/materials", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var materials []models.Material
	decodeData(t, response, &materials)
	require.Len(t, materials, 2)

	status, _ = app.do(t, http.MethodGet, "/api/v1/workbooks?course_id=3", &asStudent, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodGet, "/api/v1/workbooks?course_id=x", &asStudent, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = app.do(t, http.MethodGet, "/api/v1/workbooks", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestLibraryBooks(t *testing.T) {
	app := newTestApp(t, appOptions{})

	status, response := app.do(t, http.MethodGet, "/api/v1/library/books", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	var library dto.LibraryResponse
	decodeData(t, response, &library)
	require.Len(t, library.CourseBooks, 4)
	require.Len(t, library.ReferenceBooks, 2)

	status, response = app.do(t, http.MethodGet, "/api/v1/library/books?q=feynman", &asStudent, nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, response, &library)
	require.Empty(t, library.CourseBooks)
	require.Len(t, library.ReferenceBooks, 1)

	status, _ = app.do(t, http.MethodGet, "/api/v1/library/books?kind=magazine", &asStudent, nil)
	require.Equal(t, http.StatusBadRequest, status)
}
