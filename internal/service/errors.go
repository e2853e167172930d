package service

import "errors"

var (
	// ErrValidation indicates the request content is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the actor's role lacks the permission.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrNotEnrolled indicates the student is not on the course roster.
	ErrNotEnrolled = errors.New("student is not enrolled in this course")
	// ErrAssignmentNotFound indicates an assignment could not be found.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrSubmissionNotFound indicates no submission exists for the assignment and student.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrCourseNotFound indicates a course could not be found.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCaptchaMismatch indicates the login challenge was answered incorrectly or expired.
	ErrCaptchaMismatch = errors.New("captcha answer is incorrect")
	// ErrSessionNotFound indicates the session was revoked or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// CaptchaError carries the replacement challenge issued after a failed attempt.
type CaptchaError struct {
	Next Challenge
}

func (e *CaptchaError) Error() string {
	return ErrCaptchaMismatch.Error()
}

// Unwrap lets errors.Is match ErrCaptchaMismatch.
func (e *CaptchaError) Unwrap() error {
	return ErrCaptchaMismatch
}
