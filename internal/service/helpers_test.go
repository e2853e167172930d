package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/database"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
	"github.com/noah-isme/eduportal-api/internal/seed"
)

var (
	student = models.Identity{ID: "P-1002", Name: "Brian Lee", Role: models.RoleStudent}
	faculty = models.Identity{ID: "F-01", Name: "faculty User", Role: models.RoleFaculty}
	admin   = models.Identity{ID: "A-01", Name: "admin User", Role: models.RoleAdmin}
)

func fixedClock(value string) func() time.Time {
	return func() time.Time {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			panic(err)
		}
		return parsed
	}
}

func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	catalog, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), db, catalog, zerolog.Nop())
	require.NoError(t, err)

	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

type recordingInvalidator struct {
	mu       sync.Mutex
	students []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, studentIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students = append(r.students, studentIDs...)
}

type ledgerFixture struct {
	db         *gorm.DB
	service    *submissionService
	events     *recordingPublisher
	dashboards *recordingInvalidator
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()

	db := newSeededDB(t)
	events := &recordingPublisher{}
	dashboards := &recordingInvalidator{}

	svc := NewSubmissionService(SubmissionDependencies{
		Submissions: repository.NewSubmissionRepository(db),
		Assignments: repository.NewAssignmentRepository(db),
		Roster:      repository.NewRosterRepository(db),
		Courses:     repository.NewCourseRepository(db),
		Validator:   validator.New(validator.WithRequiredStructEnabled()),
		Events:      events,
		Activity:    NewActivityService(repository.NewActivityLogRepository(db), zerolog.Nop()),
		Dashboards:  dashboards,
		Uploads:     repository.NewUploadRepository(db),
	}, zerolog.Nop()).(*submissionService)
	svc.now = fixedClock("2025-01-07T00:00:00Z")

	return ledgerFixture{db: db, service: svc, events: events, dashboards: dashboards}
}
