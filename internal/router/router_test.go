package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/config"
	"github.com/noah-isme/gema-classroom-api/internal/database"
	"github.com/noah-isme/gema-classroom-api/internal/handler"
	"github.com/noah-isme/gema-classroom-api/internal/middleware"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
	"github.com/noah-isme/gema-classroom-api/internal/router"
	"github.com/noah-isme/gema-classroom-api/internal/service"
	"github.com/noah-isme/gema-classroom-api/internal/utils"
)

const secret = "router-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	validate := utils.NewValidator()
	cfg := config.Config{
		AppName:          "GEMA Classroom API",
		AppEnv:           "test",
		JWTSecret:        secret,
		AssignRateLimit:  100,
		AssignRateWindow: time.Minute,
	}

	tests := repository.NewTestRepository(db)
	classes := repository.NewClassRepository(db)
	students := repository.NewStudentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	studentAssignments := repository.NewStudentAssignmentRepository(db, 50)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	factory := service.NewAssignmentFactory(tests, assignments, enrollments, studentAssignments, logger)
	events := service.NewAssignmentEventPublisher(nil, "", nil, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger, RequestTimeout: 5 * time.Second})
	router.Register(app, cfg, router.Dependencies{
		DB:                        db,
		AssignmentHandler:         handler.NewAssignmentHandler(service.NewAssignmentService(tests, assignments, studentAssignments, factory, events, activity, nil, time.Minute, validate, logger), logger),
		StudentAssignmentHandler:  handler.NewStudentAssignmentHandler(service.NewStudentAssignmentService(studentAssignments, assignments, tests, nil, validate, logger), logger, middleware.RoleTeacher, middleware.RoleAdmin),
		TestHandler:               handler.NewTestHandler(service.NewTestService(tests, classes, validate, logger), logger),
		RosterHandler:             handler.NewRosterHandler(service.NewRosterService(classes, students, enrollments, validate, logger), logger),
		VocabularyCategoryHandler: handler.NewVocabularyCategoryHandler(service.NewVocabularyCategoryService(repository.NewVocabularyCategoryRepository(db), validate, logger), logger),
		ActivityHandler:           handler.NewActivityHandler(activity, logger),
	})

	return &testServer{app: app, db: db}
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body interface{}) (int, envelope, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload envelope
	require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	return resp.StatusCode, payload, raw
}

func decodeData(t *testing.T, payload envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}

func compileSchema(t *testing.T, file string) *jsonschema.Schema {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("testdata", file))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile("file://" + filepath.ToSlash(path))
	require.NoError(t, err)
	return schema
}

func TestClassroomAssignmentFlow(t *testing.T) {
	server := newTestServer(t)
	teacher := token(t, 1, middleware.RoleTeacher)
	student := token(t, 2, middleware.RoleStudent)

	status, payload, _ := server.do(t, http.MethodPost, "/api/v2/classroom/classes", teacher, map[string]string{"name": "Year 9 English"})
	require.Equal(t, fiber.StatusCreated, status)
	var class struct{ ID uint }
	decodeData(t, payload, &class)

	for _, name := range []string{"ada", "grace"} {
		status, payload, _ = server.do(t, http.MethodPost, "/api/v2/classroom/students", teacher, map[string]string{"name": name, "email": name + "@example.com"})
		require.Equal(t, fiber.StatusCreated, status)
		var created struct{ ID uint }
		decodeData(t, payload, &created)

		status, _, _ = server.do(t, http.MethodPost, fmt.Sprintf("/api/v2/classroom/classes/%d/enrollments", class.ID), teacher, map[string]uint{"student_id": created.ID})
		require.Equal(t, fiber.StatusOK, status)
	}

	status, payload, _ = server.do(t, http.MethodPost, "/api/v2/classroom/tests", teacher, map[string]interface{}{
		"title":     "Poetry",
		"class_id":  class.ID,
		"questions": []map[string]interface{}{{"prompt": "Name a sonnet", "points": 10}},
	})
	require.Equal(t, fiber.StatusCreated, status)
	var test struct{ ID uint }
	decodeData(t, payload, &test)

	due := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	status, _, _ = server.do(t, http.MethodPost, fmt.Sprintf("/api/v2/classroom/tests/%d/assignments", test.ID), student, map[string]string{"due_date": due})
	require.Equal(t, fiber.StatusForbidden, status)

	status, payload, raw := server.do(t, http.MethodPost, fmt.Sprintf("/api/v2/classroom/tests/%d/assignments", test.ID), teacher, map[string]string{
		"due_date":     due,
		"instructions": "Answer in full sentences.",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	var document interface{}
	require.NoError(t, json.Unmarshal(raw, &document))
	require.NoError(t, compileSchema(t, "assign_test_response.schema.json").Validate(document))

	var assigned struct {
		Assignment struct {
			ID           uint   `json:"id"`
			Instructions string `json:"instructions"`
		} `json:"assignment"`
		Created int `json:"student_assignments_created"`
	}
	decodeData(t, payload, &assigned)
	require.Equal(t, 2, assigned.Created)
	require.Equal(t, "Answer in full sentences.", assigned.Assignment.Instructions)

	status, payload, _ = server.do(t, http.MethodGet, fmt.Sprintf("/api/v2/classroom/assignments/%d/students", assigned.Assignment.ID), teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	var records []struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, payload, &records)
	require.Len(t, records, 2)
	require.Equal(t, "assigned", records[0].Status)

	statusPath := fmt.Sprintf("/api/v2/classroom/student-assignments/%d/status", records[0].ID)
	status, _, _ = server.do(t, http.MethodPatch, statusPath, student, map[string]string{"status": "submitted"})
	require.Equal(t, fiber.StatusOK, status)

	status, _, _ = server.do(t, http.MethodPatch, statusPath, student, map[string]interface{}{"status": "graded", "score": 5})
	require.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = server.do(t, http.MethodPatch, statusPath, teacher, map[string]interface{}{"status": "graded", "score": 11})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = server.do(t, http.MethodPatch, statusPath, teacher, map[string]interface{}{"status": "graded", "score": 9})
	require.Equal(t, fiber.StatusOK, status)

	status, payload, _ = server.do(t, http.MethodGet, fmt.Sprintf("/api/v2/classroom/assignments/%d/progress", assigned.Assignment.ID), teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	var progress struct {
		Total          int64            `json:"total"`
		Counts         map[string]int64 `json:"counts"`
		CompletionRate float64          `json:"completion_rate"`
	}
	decodeData(t, payload, &progress)
	require.Equal(t, int64(2), progress.Total)
	require.Equal(t, int64(1), progress.Counts["graded"])
	require.InDelta(t, 0.5, progress.CompletionRate, 0.0001)

	status, payload, _ = server.do(t, http.MethodPost, fmt.Sprintf("/api/v2/classroom/assignments/%d/sync", assigned.Assignment.ID), teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	var synced struct {
		Created int `json:"created"`
	}
	decodeData(t, payload, &synced)
	require.Zero(t, synced.Created)

	status, payload, _ = server.do(t, http.MethodGet, fmt.Sprintf("/api/v2/classroom/assignments?class_id=%d", class.ID), student, nil)
	require.Equal(t, fiber.StatusOK, status)
	var meta struct {
		TotalItems int64 `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal(payload.Meta, &meta))
	require.Equal(t, int64(1), meta.TotalItems)

	status, payload, _ = server.do(t, http.MethodGet, fmt.Sprintf("/api/v2/classroom/activities?entity_type=assignment&entity_id=%d", assigned.Assignment.ID), teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	var entries []struct {
		Action string `json:"action"`
	}
	decodeData(t, payload, &entries)
	require.NotEmpty(t, entries)
}

func TestAssignEndpointErrors(t *testing.T) {
	server := newTestServer(t)
	teacher := token(t, 1, middleware.RoleAdmin)

	status, _, _ := server.do(t, http.MethodPost, "/api/v2/classroom/tests/1/assignments", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = server.do(t, http.MethodPost, "/api/v2/classroom/tests/abc/assignments", teacher, nil)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _, _ = server.do(t, http.MethodPost, "/api/v2/classroom/tests/404/assignments", teacher, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	status, payload, _ := server.do(t, http.MethodPost, "/api/v2/classroom/tests/1/assignments", teacher, map[string]string{"due_date": "tomorrow"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, string(payload.Details), "due_date")
}

func TestVocabularyCategoryEndpoints(t *testing.T) {
	server := newTestServer(t)
	teacher := token(t, 1, middleware.RoleTeacher)
	student := token(t, 2, middleware.RoleStudent)
	base := "/api/v2/classroom/vocabulary-categories"

	status, payload, _ := server.do(t, http.MethodPost, base, teacher, map[string]string{"name": "Animals", "color_code": "#aabbcc"})
	require.Equal(t, fiber.StatusCreated, status)
	var animals struct{ ID uint }
	decodeData(t, payload, &animals)

	status, payload, _ = server.do(t, http.MethodPost, base, teacher, map[string]string{"name": "Food"})
	require.Equal(t, fiber.StatusCreated, status)
	var food struct{ ID uint }
	decodeData(t, payload, &food)

	status, _, _ = server.do(t, http.MethodPut, fmt.Sprintf("%s/%d", base, animals.ID), teacher, map[string]string{"name": "Animals", "color_code": "#000000"})
	require.Equal(t, fiber.StatusOK, status)

	status, _, _ = server.do(t, http.MethodPut, fmt.Sprintf("%s/%d", base, food.ID), teacher, map[string]string{"name": "Animals"})
	require.Equal(t, fiber.StatusConflict, status)

	status, payload, _ = server.do(t, http.MethodPut, fmt.Sprintf("%s/%d", base, food.ID), teacher, map[string]string{"name": "Food", "color_code": "#1234567"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, string(payload.Details), "color_code")

	status, _, _ = server.do(t, http.MethodPost, base, student, map[string]string{"name": "Sports"})
	require.Equal(t, fiber.StatusForbidden, status)

	status, payload, _ = server.do(t, http.MethodGet, base, student, nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []struct{ Name string }
	decodeData(t, payload, &list)
	require.Len(t, list, 2)

	status, _, _ = server.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, food.ID), teacher, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _, _ = server.do(t, http.MethodGet, fmt.Sprintf("%s/%d", base, food.ID), teacher, nil)
	require.Equal(t, fiber.StatusNotFound, status)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	status, payload, _ := server.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	var health handler.HealthResponse
	decodeData(t, payload, &health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Dependencies["database"])
	require.Equal(t, "disabled", health.Dependencies["redis"])
}
