package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduportal-api/internal/dto"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/observability"
	"github.com/noah-isme/eduportal-api/internal/repository"
)

// DashboardService produces the landing view for each role.
type DashboardService interface {
	DashboardInvalidator
	Dashboard(ctx context.Context, identity models.Identity) (dto.DashboardResponse, error)
}

type dashboardService struct {
	courses     repository.CourseRepository
	roster      repository.RosterRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	prefix      string
	logger      zerolog.Logger
	now         func() time.Time
}

// DashboardDependencies groups the repositories the dashboard reads from.
type DashboardDependencies struct {
	Courses     repository.CourseRepository
	Roster      repository.RosterRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
}

// NewDashboardService builds the dashboard aggregator. cache may be nil.
func NewDashboardService(deps DashboardDependencies, cache *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		courses:     deps.Courses,
		roster:      deps.Roster,
		assignments: deps.Assignments,
		submissions: deps.Submissions,
		cache:       cache,
		cacheTTL:    ttl,
		prefix:      prefix + ":dashboard",
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, identity models.Identity) (dto.DashboardResponse, error) {
	cacheKey := s.cacheKey(identity)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.DashboardCacheLookups().WithLabelValues("hit").Inc()
				refreshDeadlines(&response, s.now())
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCacheLookups().WithLabelValues("miss").Inc()
	}

	response := dto.DashboardResponse{Role: string(identity.Role)}
	if identity.Role.IsStaff() {
		staff, err := s.staffDashboard(ctx)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		response.Staff = &staff
	} else {
		response.Role = string(models.RoleStudent)
		student, err := s.studentDashboard(ctx, identity.ID)
		if err != nil {
			return dto.DashboardResponse{}, err
		}
		response.Student = &student
	}

	s.store(ctx, identity, cacheKey, response)
	return response, nil
}

// Invalidate drops the students' dashboards and every cached staff dashboard.
func (s *dashboardService) Invalidate(ctx context.Context, studentIDs ...string) {
	if s.cache == nil {
		return
	}

	keys := make([]string, 0, len(studentIDs)+1)
	for _, studentID := range studentIDs {
		keys = append(keys, s.prefix+":student:"+studentID)
	}
	keys = append(keys, s.staffIndexKey())
	members, err := s.cache.SMembers(ctx, s.staffIndexKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Msg("failed to read staff dashboard index")
	}
	keys = append(keys, members...)

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) studentDashboard(ctx context.Context, studentID string) (dto.StudentDashboardResponse, error) {
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	courseIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseIDs: courseIDs})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := dto.StudentDashboardResponse{
		EnrolledCourses: len(courses),
		Pending:         []dto.AssignmentResponse{},
	}

	submitted := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		submitted[submission.AssignmentID] = struct{}{}
		response.Submitted++
		if submission.IsGraded() {
			response.Graded++
		}
	}

	now := s.now()
	for _, assignment := range assignments {
		if _, done := submitted[assignment.ID]; done {
			continue
		}
		response.Pending = append(response.Pending, dto.NewAssignmentResponse(assignment, now))
	}

	return response, nil
}

func (s *dashboardService) staffDashboard(ctx context.Context) (dto.StaffDashboardResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return dto.StaffDashboardResponse{}, err
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return dto.StaffDashboardResponse{}, err
	}

	rosterSize := make(map[uint]int, len(courses))
	for _, course := range courses {
		entries, err := s.roster.ListByCourse(ctx, course.ID)
		if err != nil {
			return dto.StaffDashboardResponse{}, err
		}
		rosterSize[course.ID] = len(entries)
	}

	now := s.now()
	response := dto.StaffDashboardResponse{
		Courses:     len(courses),
		Assignments: make([]dto.AssignmentProgress, 0, len(assignments)),
	}
	for _, assignment := range assignments {
		submissions, err := s.submissions.ListByAssignment(ctx, assignment.ID)
		if err != nil {
			return dto.StaffDashboardResponse{}, err
		}

		progress := dto.AssignmentProgress{
			Assignment: dto.NewAssignmentResponse(assignment, now),
			Submitted:  len(submissions),
		}
		for _, submission := range submissions {
			if submission.IsGraded() {
				progress.Graded++
			} else {
				response.Ungraded++
			}
		}
		progress.NotSubmitted = rosterSize[assignment.CourseID] - progress.Submitted
		if progress.NotSubmitted < 0 {
			progress.NotSubmitted = 0
		}
		response.Assignments = append(response.Assignments, progress)
	}

	return response, nil
}

func (s *dashboardService) store(ctx context.Context, identity models.Identity, key string, response dto.DashboardResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	pipe := s.cache.TxPipeline()
	pipe.Set(ctx, key, payload, s.cacheTTL)
	if identity.Role.IsStaff() {
		pipe.SAdd(ctx, s.staffIndexKey(), key)
		pipe.Expire(ctx, s.staffIndexKey(), s.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

func (s *dashboardService) cacheKey(identity models.Identity) string {
	if identity.Role.IsStaff() {
		return fmt.Sprintf("%s:staff:%s:%s", s.prefix, identity.Role, identity.ID)
	}
	return s.prefix + ":student:" + identity.ID
}

func (s *dashboardService) staffIndexKey() string {
	return s.prefix + ":staff-index"
}

// refreshDeadlines recomputes the day-dependent fields of a cached dashboard.
func refreshDeadlines(response *dto.DashboardResponse, now time.Time) {
	if response.Student != nil {
		for i := range response.Student.Pending {
			response.Student.Pending[i].Refresh(now)
		}
	}
	if response.Staff != nil {
		for i := range response.Staff.Assignments {
			response.Staff.Assignments[i].Assignment.Refresh(now)
		}
	}
}
