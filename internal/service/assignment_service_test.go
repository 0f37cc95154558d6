package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/dto"
	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

type assignmentServiceFixture struct {
	db      *gorm.DB
	mini    *miniredis.Miniredis
	redis   *redis.Client
	service AssignmentService
	class   models.Class
	test    models.Test
}

func newAssignmentServiceFixture(t *testing.T, names ...string) *assignmentServiceFixture {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db := openTestDB(t)
	class, test := seedClassroom(t, db, names...)

	tests := repository.NewTestRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	studentAssignments := repository.NewStudentAssignmentRepository(db, 2)
	activity := NewActivityService(repository.NewActivityLogRepository(db), testLogger())
	factory := NewAssignmentFactory(tests, assignments, enrollments, studentAssignments, testLogger())
	events := NewAssignmentEventPublisher(client, "gema:classroom", nil, testLogger())

	svc := NewAssignmentService(tests, assignments, studentAssignments, factory, events, activity, client, time.Minute, newTestValidator(), testLogger())

	return &assignmentServiceFixture{db: db, mini: mini, redis: client, service: svc, class: class, test: test}
}

func TestAssignmentServiceAssignTestFansOutToRoster(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada", "Grace", "Linus")
	ctx := context.Background()

	due := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	result, err := fixture.service.AssignTest(ctx, fixture.test.ID, dto.AssignTestRequest{
		DueDate:      &due,
		Instructions: stringPtr("<b>Show</b> your working & units<script>alert(1)</script>"),
	}, ActivityActor{ID: 9, Role: "teacher"})
	require.NoError(t, err)

	require.Equal(t, 3, result.StudentAssignmentsCreated)
	require.Equal(t, fixture.test.Title, result.Assignment.Title)
	require.Equal(t, fixture.class.ID, result.Assignment.ClassID)
	require.NotNil(t, result.Assignment.DueDate)
	require.Equal(t, "Show your working & units", result.Assignment.Instructions)

	var logs []models.ActivityLog
	require.NoError(t, fixture.db.Where("action = ?", AssignmentPublishedEventType).Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, uint(9), logs[0].ActorID)
}

func TestAssignmentServiceAssignTestWithoutOptions(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada")

	result, err := fixture.service.AssignTest(context.Background(), fixture.test.ID, dto.AssignTestRequest{}, ActivityActor{})
	require.NoError(t, err)
	require.Nil(t, result.Assignment.DueDate)
	require.Empty(t, result.Assignment.Instructions)
	require.Equal(t, 1, result.StudentAssignmentsCreated)
}

func TestAssignmentServiceAssignTestRejectsPastDueDate(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada")

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	_, err := fixture.service.AssignTest(context.Background(), fixture.test.ID, dto.AssignTestRequest{DueDate: &past}, ActivityActor{})
	require.ErrorIs(t, err, ErrInvalidDueDate)

	var count int64
	require.NoError(t, fixture.db.Model(&models.Assignment{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignmentServiceAssignTestUnknownTest(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada")

	_, err := fixture.service.AssignTest(context.Background(), 999, dto.AssignTestRequest{}, ActivityActor{})
	require.ErrorIs(t, err, ErrTestNotFound)
}

func TestAssignmentServiceProgressCachingAndSync(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada", "Grace")
	ctx := context.Background()

	result, err := fixture.service.AssignTest(ctx, fixture.test.ID, dto.AssignTestRequest{}, ActivityActor{ID: 1, Role: "teacher"})
	require.NoError(t, err)
	assignmentID := result.Assignment.ID

	first, err := fixture.service.Progress(ctx, assignmentID)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(2), first.Total)
	require.Equal(t, int64(2), first.Counts[models.StudentAssignmentStatusAssigned])
	require.Equal(t, int64(0), first.Counts[models.StudentAssignmentStatusGraded])
	require.True(t, fixture.mini.Exists(progressCacheKey(assignmentID)))

	second, err := fixture.service.Progress(ctx, assignmentID)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Total, second.Total)

	seedStudent(t, fixture.db, fixture.class.ID, "Linus")

	synced, err := fixture.service.Sync(ctx, assignmentID, ActivityActor{ID: 1, Role: "teacher"})
	require.NoError(t, err)
	require.Equal(t, 1, synced.Created)
	require.False(t, fixture.mini.Exists(progressCacheKey(assignmentID)))

	again, err := fixture.service.Sync(ctx, assignmentID, ActivityActor{ID: 1, Role: "teacher"})
	require.NoError(t, err)
	require.Zero(t, again.Created)

	third, err := fixture.service.Progress(ctx, assignmentID)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, int64(3), third.Total)

	students, err := fixture.service.ListStudentAssignments(ctx, assignmentID)
	require.NoError(t, err)
	require.Len(t, students, 3)
	require.NotEmpty(t, students[0].StudentName)
}

func TestAssignmentServiceGetAndList(t *testing.T) {
	fixture := newAssignmentServiceFixture(t, "Ada")
	ctx := context.Background()

	created, err := fixture.service.AssignTest(ctx, fixture.test.ID, dto.AssignTestRequest{}, ActivityActor{})
	require.NoError(t, err)

	got, err := fixture.service.Get(ctx, created.Assignment.ID)
	require.NoError(t, err)
	require.Equal(t, created.Assignment.ID, got.ID)

	_, err = fixture.service.Get(ctx, 404)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	list, err := fixture.service.List(ctx, dto.AssignmentListRequest{ClassID: fixture.class.ID, Search: "fraction"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.Equal(t, int64(1), list.Pagination.TotalItems)
	require.Equal(t, 20, list.Pagination.PageSize)

	_, err = fixture.service.Progress(ctx, 404)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
	_, err = fixture.service.Sync(ctx, 404, ActivityActor{})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

type failingFanoutFactory struct {
	AssignmentFactory
}

func (f failingFanoutFactory) CreateStudentAssignments(context.Context, models.Assignment) (int, error) {
	return 0, dependencyFailure("failed to resolve enrolled students", errors.New("roster offline"))
}

func TestAssignmentServiceAssignTestSurfacesFanoutFailure(t *testing.T) {
	db := openTestDB(t)
	_, test := seedClassroom(t, db, "Ada")

	tests := repository.NewTestRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	studentAssignments := repository.NewStudentAssignmentRepository(db, 0)
	factory := failingFanoutFactory{NewAssignmentFactory(tests, assignments, repository.NewEnrollmentRepository(db), studentAssignments, testLogger())}
	svc := NewAssignmentService(tests, assignments, studentAssignments, factory, nil, nil, nil, time.Minute, newTestValidator(), testLogger())

	_, err := svc.AssignTest(context.Background(), test.ID, dto.AssignTestRequest{}, ActivityActor{})
	require.ErrorIs(t, err, ErrDependencyFailure)

	var fanoutErr *AssignmentFanoutError
	require.ErrorAs(t, err, &fanoutErr)

	var stored models.Assignment
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, stored.ID, fanoutErr.AssignmentID)
}
