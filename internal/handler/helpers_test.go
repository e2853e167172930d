package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduportal-api/internal/config"
	"github.com/noah-isme/eduportal-api/internal/database"
	"github.com/noah-isme/eduportal-api/internal/handler"
	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/repository"
	"github.com/noah-isme/eduportal-api/internal/router"
	"github.com/noah-isme/eduportal-api/internal/seed"
	"github.com/noah-isme/eduportal-api/internal/service"
)

const testSecret = "handler-test-secret"

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

type appOptions struct {
	realAuth bool
	storage  service.ArtifactStorage
}

func newSeededDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{})
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

// headerIdentity stands in for JWT validation: X-Test-User / X-Test-Role / X-Test-Name become locals.
func headerIdentity(c *fiber.Ctx) error {
	if userID := c.Get("X-Test-User"); userID != "" {
		c.Locals("user_id", userID)
		c.Locals("user_role", c.Get("X-Test-Role"))
		c.Locals("user_name", c.Get("X-Test-Name"))
		c.Locals("session_id", "test-session")
	}
	return c.Next()
}

func newTestApp(t *testing.T, opts appOptions) testApp {
	t.Helper()

	db := newSeededDB(t)
	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())

	courses := repository.NewCourseRepository(db)
	roster := repository.NewRosterRepository(db)
	library := repository.NewLibraryRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	uploads := repository.NewUploadRepository(db)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	dashboard := service.NewDashboardService(service.DashboardDependencies{
		Courses:     courses,
		Roster:      roster,
		Assignments: assignments,
		Submissions: submissions,
	}, nil, "test", 0, logger)
	ledger := service.NewSubmissionService(service.SubmissionDependencies{
		Submissions: submissions,
		Assignments: assignments,
		Roster:      roster,
		Courses:     courses,
		Validator:   validate,
		Events:      service.NewEventPublisher(nil, "test.ledger", logger),
		Activity:    activity,
		Dashboards:  dashboard,
		Uploads:     uploads,
	}, logger)
	catalog := service.NewCatalogService(courses, roster, library, validate, logger)
	registry := service.NewAssignmentService(service.AssignmentDependencies{
		Assignments: assignments,
		Courses:     courses,
		Roster:      roster,
		Validator:   validate,
		Activity:    activity,
		Dashboards:  dashboard,
	}, logger)
	profiles := service.NewProfileService(courses)
	views := service.NewViewService(service.ViewDependencies{
		Catalog:     catalog,
		Assignments: registry,
		Submissions: ledger,
		Dashboard:   dashboard,
		Profile:     profiles,
		Activity:    activity,
	}, logger)
	auth := service.NewAuthService(service.NewMemoryCaptchaStore(), service.NewMemorySessionStore(), roster, validate,
		service.AuthConfig{Secret: testSecret}, logger)

	storage := opts.storage
	if storage == nil {
		storage = &memoryStorage{objects: map[string][]byte{}}
	}

	jwt := fiber.Handler(headerIdentity)
	if opts.realAuth {
		jwt = middleware.JWTProtected(testSecret, auth)
	}

	cfg := config.Config{AppName: "EduPortal API", AppEnv: "test", StoragePublicURL: "/files", LoginRateLimit: 100}

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(auth, logger),
		NavigationHandler: handler.NewNavigationHandler(service.NewNavigationService(ledger), views, profiles, logger),
		CatalogHandler:    handler.NewCatalogHandler(catalog, logger),
		AssignmentHandler: handler.NewAssignmentHandler(registry, logger),
		SubmissionHandler: handler.NewSubmissionHandler(ledger, logger),
		ArtifactHandler:   handler.NewArtifactHandler(service.NewArtifactService(storage, uploads, 1, logger), logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboard, activity, logger),
		JWTMiddleware:     jwt,
	})

	return testApp{app: app, db: db}
}

type actor struct {
	id   string
	name string
	role string
}

var (
	asStudent = actor{id: "P-1002", name: "Brian Lee", role: "student"}
	asFaculty = actor{id: "F-01", name: "faculty User", role: "faculty"}
	asAdmin   = actor{id: "A-01", name: "admin User", role: "admin"}
)

func (a testApp) do(t *testing.T, method, path string, who *actor, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		req.Header.Set("X-Test-User", who.id)
		req.Header.Set("X-Test-Role", who.role)
		req.Header.Set("X-Test-Name", who.name)
	}

	return a.send(t, req)
}

func (a testApp) send(t *testing.T, req *http.Request) (int, apiResponse) {
	t.Helper()

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func decodeData(t *testing.T, response apiResponse, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(response.Data, target))
}

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, key string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "/files/" + key, nil
}
