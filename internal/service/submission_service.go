package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/observability"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// DashboardInvalidator drops the cached dashboards of the given students and of all staff.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentIDs ...string)
}

// SubmissionService is the submission ledger: at most one live submission per assignment and
// student, replaced on resubmission.
type SubmissionService interface {
	Submit(ctx context.Context, actor models.Identity, assignmentID uint, content dto.SubmissionContent) (dto.SubmissionResponse, error)
	SubmitOnBehalf(ctx context.Context, actor models.Identity, assignmentID uint, payload dto.SubmitOnBehalfRequest) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor models.Identity, assignmentID uint, studentID string, payload dto.GradeRequest) (dto.SubmissionResponse, error)
	ListSubmitted(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	ListNotSubmitted(ctx context.Context, assignmentID uint) ([]dto.RosterEntryResponse, error)
	Review(ctx context.Context, assignmentID uint) (dto.AssignmentReviewResponse, error)
	ForStudent(ctx context.Context, assignmentID uint, studentID string) (*dto.SubmissionResponse, error)
	PendingDeadlines(ctx context.Context, studentID string) (int, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	roster      repository.RosterRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	events      EventPublisher
	activity    ActivityRecorder
	dashboards  DashboardInvalidator
	uploads     repository.UploadRepository
	sanitizer   *bluemonday.Policy
	locks       *keyedMutex
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// SubmissionDependencies groups the collaborators of the ledger.
type SubmissionDependencies struct {
	Submissions repository.SubmissionRepository
	Assignments repository.AssignmentRepository
	Roster      repository.RosterRepository
	Courses     repository.CourseRepository
	Validator   *validator.Validate
	Events      EventPublisher
	Activity    ActivityRecorder
	Dashboards  DashboardInvalidator
	// Uploads, when set, restricts artifact references to files uploaded by the student or the acting staff member.
	Uploads repository.UploadRepository
}

// NewSubmissionService constructs the submission ledger.
func NewSubmissionService(deps SubmissionDependencies, logger zerolog.Logger) SubmissionService {
	events := deps.Events
	if events == nil {
		events = NewEventPublisher(nil, "", logger)
	}

	return &submissionService{
		submissions: deps.Submissions,
		assignments: deps.Assignments,
		roster:      deps.Roster,
		courses:     deps.Courses,
		validator:   deps.Validator,
		events:      events,
		activity:    deps.Activity,
		dashboards:  deps.Dashboards,
		uploads:     deps.Uploads,
		sanitizer:   bluemonday.StrictPolicy(),
		locks:       newKeyedMutex(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/eduportal-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor models.Identity, assignmentID uint, content dto.SubmissionContent) (dto.SubmissionResponse, error) {
	return s.write(ctx, actor, assignmentID, actor.ID, content)
}

func (s *submissionService) SubmitOnBehalf(ctx context.Context, actor models.Identity, assignmentID uint, payload dto.SubmitOnBehalfRequest) (dto.SubmissionResponse, error) {
	if !actor.Role.IsStaff() {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: only faculty or admin may submit on behalf of a student", ErrForbidden)
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return s.write(ctx, actor, assignmentID, strings.TrimSpace(payload.StudentID), payload.SubmissionContent)
}

func (s *submissionService) write(ctx context.Context, actor models.Identity, assignmentID uint, studentID string, content dto.SubmissionContent) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.submit", trace.WithAttributes(
		attribute.Int64("ledger.assignment_id", int64(assignmentID)),
		attribute.String("ledger.student_id", studentID),
		attribute.String("ledger.actor_role", string(actor.Role)),
	))
	defer span.End()

	if err := s.validator.Struct(content); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}

	artifactRef := strings.TrimSpace(content.ArtifactRef)
	textNote := strings.TrimSpace(s.sanitizer.Sanitize(content.TextNote))
	if artifactRef == "" && textNote == "" {
		err := fmt.Errorf("%w: an artifact or a text note is required", ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty submission")
		observability.SubmissionWrites().WithLabelValues("rejected").Inc()
		return dto.SubmissionResponse{}, err
	}
	if studentID == "" {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: student id is required", ErrValidation)
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment lookup failed")
		return dto.SubmissionResponse{}, err
	}

	enrolment, err := s.roster.Get(ctx, assignment.CourseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("%w: %s is not on the roster of course %d", ErrNotEnrolled, studentID, assignment.CourseID)
			observability.SubmissionWrites().WithLabelValues("rejected").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster check failed")
		return dto.SubmissionResponse{}, err
	}

	if err := s.checkArtifact(ctx, actor, studentID, artifactRef); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact check failed")
		observability.SubmissionWrites().WithLabelValues("rejected").Inc()
		return dto.SubmissionResponse{}, err
	}

	unlock := s.locks.Lock(ledgerKey(assignmentID, studentID))
	defer unlock()

	_, err = s.submissions.Get(ctx, assignmentID, studentID)
	replaced := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger lookup failed")
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		StudentName:  enrolment.StudentName,
		SubmittedOn:  s.now().UTC(),
		SubmittedBy:  actor.ID,
		ArtifactRef:  optionalString(artifactRef),
		TextNote:     optionalString(textNote),
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger write failed")
		return dto.SubmissionResponse{}, err
	}

	stored, err := s.submissions.Get(ctx, assignmentID, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger reload failed")
		return dto.SubmissionResponse{}, err
	}

	eventType := EventSubmissionCreated
	outcome := "created"
	if replaced {
		eventType = EventSubmissionReplaced
		outcome = "replaced"
	}
	observability.SubmissionWrites().WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("ledger.outcome", outcome))

	if stored.OnBehalf() {
		s.record(ctx, actor, "submission.on_behalf", stored, map[string]interface{}{
			"assignment_id": assignmentID,
			"student_id":    studentID,
			"replaced":      replaced,
		})
	}
	s.afterWrite(ctx, eventType, actor, stored)

	s.logger.Info().
		Uint("submission_id", stored.ID).
		Uint("assignment_id", assignmentID).
		Str("student_id", studentID).
		Str("outcome", outcome).
		Bool("past_due", assignment.IsPastDue(s.now())).
		Msg("submission recorded")

	span.SetStatus(codes.Ok, outcome)
	return dto.NewSubmissionResponse(stored), nil
}

func (s *submissionService) checkArtifact(ctx context.Context, actor models.Identity, studentID, ref string) error {
	if ref == "" || s.uploads == nil {
		return nil
	}

	record, err := s.uploads.FindByRef(ctx, ref)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: unknown artifact reference", ErrValidation)
	}
	if record.OwnerID != studentID && record.OwnerID != actor.ID {
		return fmt.Errorf("%w: artifact belongs to another user", ErrForbidden)
	}
	return nil
}

func (s *submissionService) Grade(ctx context.Context, actor models.Identity, assignmentID uint, studentID string, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.grade", trace.WithAttributes(
		attribute.Int64("ledger.assignment_id", int64(assignmentID)),
		attribute.String("ledger.student_id", studentID),
	))
	defer span.End()

	if !actor.Role.IsStaff() {
		err := fmt.Errorf("%w: only faculty or admin may grade", ErrForbidden)
		span.RecordError(err)
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}

	grade := strings.TrimSpace(payload.Grade)
	if grade == "" {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: grade is required", ErrValidation)
	}

	studentID = strings.TrimSpace(studentID)
	unlock := s.locks.Lock(ledgerKey(assignmentID, studentID))
	defer unlock()

	submission, err := s.submissions.Get(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("%w: no submission from %s for assignment %d", ErrSubmissionNotFound, studentID, assignmentID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission lookup failed")
		return dto.SubmissionResponse{}, err
	}

	gradedAt := s.now().UTC()
	gradedBy := actor.ID
	submission.Grade = &grade
	submission.GradedBy = &gradedBy
	submission.GradedAt = &gradedAt
	if payload.Feedback != nil {
		submission.Feedback = optionalString(strings.TrimSpace(s.sanitizer.Sanitize(*payload.Feedback)))
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger write failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionWrites().WithLabelValues("graded").Inc()
	s.record(ctx, actor, "submission.graded", submission, map[string]interface{}{
		"assignment_id": assignmentID,
		"student_id":    studentID,
		"grade":         grade,
	})
	s.afterWrite(ctx, EventSubmissionGraded, actor, submission)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("graded_by", actor.ID).
		Msg("submission graded")

	span.SetStatus(codes.Ok, "graded")
	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListSubmitted(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.loadAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	SortByStudentNumber(submissions)
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListNotSubmitted(ctx context.Context, assignmentID uint) ([]dto.RosterEntryResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	missing, err := s.notSubmitted(ctx, assignment)
	if err != nil {
		return nil, err
	}
	return dto.NewRosterEntryResponseSlice(missing), nil
}

func (s *submissionService) Review(ctx context.Context, assignmentID uint) (dto.AssignmentReviewResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentReviewResponse{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentReviewResponse{}, err
	}
	SortByStudentNumber(submissions)

	missing, err := s.notSubmitted(ctx, assignment)
	if err != nil {
		return dto.AssignmentReviewResponse{}, err
	}

	return dto.AssignmentReviewResponse{
		Assignment:   dto.NewAssignmentResponse(assignment, s.now()),
		Submitted:    dto.NewSubmissionResponseSlice(submissions),
		NotSubmitted: dto.NewRosterEntryResponseSlice(missing),
	}, nil
}

func (s *submissionService) ForStudent(ctx context.Context, assignmentID uint, studentID string) (*dto.SubmissionResponse, error) {
	submission, err := s.submissions.Get(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	response := dto.NewSubmissionResponse(submission)
	return &response, nil
}

// PendingDeadlines counts assignments in the student's courses that are still open and that the
// student has not submitted.
func (s *submissionService) PendingDeadlines(ctx context.Context, studentID string) (int, error) {
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseIDs: courseIDs})
	if err != nil {
		return 0, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	submitted := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		submitted[submission.AssignmentID] = struct{}{}
	}

	now := s.now()
	pending := 0
	for _, assignment := range assignments {
		if _, done := submitted[assignment.ID]; done {
			continue
		}
		if assignment.DaysLeft(now) >= 0 {
			pending++
		}
	}
	return pending, nil
}

func (s *submissionService) notSubmitted(ctx context.Context, assignment models.Assignment) ([]models.RosterEntry, error) {
	roster, err := s.roster.ListByCourse(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]struct{}, len(submissions))
	for _, submission := range submissions {
		submitted[submission.StudentID] = struct{}{}
	}

	missing := make([]models.RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if _, ok := submitted[entry.StudentID]; !ok {
			missing = append(missing, entry)
		}
	}
	return missing, nil
}

func (s *submissionService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, fmt.Errorf("%w: %d", ErrAssignmentNotFound, id)
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *submissionService) record(ctx context.Context, actor models.Identity, action string, submission models.Submission, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	id := submission.ID
	if err := s.activity.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}

func (s *submissionService) afterWrite(ctx context.Context, eventType string, actor models.Identity, submission models.Submission) {
	if s.dashboards != nil {
		s.dashboards.Invalidate(ctx, submission.StudentID)
	}

	event := LedgerEvent{
		Type:         eventType,
		AssignmentID: submission.AssignmentID,
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		ActorID:      actor.ID,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish ledger event")
	}
}

// SortByStudentNumber orders submissions by the numeric part of the student id. Ids without
// digits count as zero; equal numbers keep their existing order.
func SortByStudentNumber(submissions []models.Submission) {
	sort.SliceStable(submissions, func(i, j int) bool {
		return lessStudentNumber(studentNumber(submissions[i].StudentID), studentNumber(submissions[j].StudentID))
	})
}

// studentNumber keeps the digits of id without leading zeros, so arbitrarily long suffixes
// compare without overflow.
func studentNumber(id string) string {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "0")
}

func lessStudentNumber(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func ledgerKey(assignmentID uint, studentID string) string {
	return fmt.Sprintf("%d:%s", assignmentID, studentID)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
