package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-classroom-api/internal/models"
	"github.com/noah-isme/gema-classroom-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryTestRepo struct {
	tests   map[uint]models.Test
	nextID  uint
	loadErr error
}

func newMemoryTestRepo() *memoryTestRepo {
	return &memoryTestRepo{tests: make(map[uint]models.Test), nextID: 1}
}

func (m *memoryTestRepo) GetByID(_ context.Context, id uint) (models.Test, error) {
	if m.loadErr != nil {
		return models.Test{}, m.loadErr
	}
	test, ok := m.tests[id]
	if !ok {
		return models.Test{}, gorm.ErrRecordNotFound
	}
	return test, nil
}

func (m *memoryTestRepo) ListByClass(_ context.Context, classID *uint) ([]models.Test, error) {
	results := make([]models.Test, 0, len(m.tests))
	for _, test := range m.tests {
		if classID != nil && test.ClassID != *classID {
			continue
		}
		results = append(results, test)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryTestRepo) Create(_ context.Context, test *models.Test) error {
	test.ID = m.nextID
	for i := range test.Questions {
		test.Questions[i].ID = uint(i + 1)
		test.Questions[i].TestID = test.ID
	}
	m.tests[test.ID] = *test
	m.nextID++
	return nil
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
	createErr   error
	loadErr     error
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (m *memoryAssignmentRepo) ListWithFilter(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, int64, error) {
	results := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		if filter.ClassID != nil && assignment.ClassID != *filter.ClassID {
			continue
		}
		if filter.TestID != nil && assignment.TestID != *filter.TestID {
			continue
		}
		results = append(results, assignment)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	total := int64(len(results))
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(results) {
			return []models.Assignment{}, total, nil
		}
		end := start + filter.PageSize
		if end > len(results) {
			end = len(results)
		}
		results = results[start:end]
	}
	return results, total, nil
}

func (m *memoryAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	if m.loadErr != nil {
		return models.Assignment{}, m.loadErr
	}
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	m.assignments[assignment.ID] = *assignment
	m.nextID++
	return nil
}

type memoryEnrollmentRepo struct {
	roster  map[uint][]uint
	listErr error
}

func newMemoryEnrollmentRepo() *memoryEnrollmentRepo {
	return &memoryEnrollmentRepo{roster: make(map[uint][]uint)}
}

func (m *memoryEnrollmentRepo) ListActiveStudentIDs(_ context.Context, classID uint) ([]uint, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]uint(nil), m.roster[classID]...), nil
}

func (m *memoryEnrollmentRepo) ListActiveStudents(_ context.Context, classID uint) ([]models.Student, error) {
	students := make([]models.Student, 0, len(m.roster[classID]))
	for _, id := range m.roster[classID] {
		students = append(students, models.Student{ID: id})
	}
	return students, nil
}

func (m *memoryEnrollmentRepo) Enroll(_ context.Context, enrollment *models.Enrollment) error {
	for _, id := range m.roster[enrollment.ClassID] {
		if id == enrollment.StudentID {
			return nil
		}
	}
	m.roster[enrollment.ClassID] = append(m.roster[enrollment.ClassID], enrollment.StudentID)
	return nil
}

func (m *memoryEnrollmentRepo) Withdraw(_ context.Context, classID, studentID uint, _ time.Time) error {
	ids := m.roster[classID]
	for i, id := range ids {
		if id == studentID {
			m.roster[classID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type pairKey struct {
	assignmentID uint
	studentID    uint
}

// memoryStudentAssignmentRepo mirrors the unique (assignment_id, student_id) index.
type memoryStudentAssignmentRepo struct {
	mu        sync.Mutex
	records   map[uint]models.StudentAssignment
	pairs     map[pairKey]uint
	nextID    uint
	createErr error
}

func newMemoryStudentAssignmentRepo() *memoryStudentAssignmentRepo {
	return &memoryStudentAssignmentRepo{
		records: make(map[uint]models.StudentAssignment),
		pairs:   make(map[pairKey]uint),
		nextID:  1,
	}
}

func (m *memoryStudentAssignmentRepo) CreateMissing(_ context.Context, assignmentID uint, studentIDs []uint) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return 0, m.createErr
	}

	created := 0
	for _, studentID := range studentIDs {
		key := pairKey{assignmentID: assignmentID, studentID: studentID}
		if _, exists := m.pairs[key]; exists || studentID == 0 {
			continue
		}
		record := models.StudentAssignment{
			ID:           m.nextID,
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Status:       models.StudentAssignmentStatusAssigned,
		}
		m.records[record.ID] = record
		m.pairs[key] = record.ID
		m.nextID++
		created++
	}
	return created, nil
}

func (m *memoryStudentAssignmentRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.StudentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]models.StudentAssignment, 0)
	for _, record := range m.records {
		if record.AssignmentID == assignmentID {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].StudentID < results[j].StudentID })
	return results, nil
}

func (m *memoryStudentAssignmentRepo) CountByStatus(ctx context.Context, assignmentID uint) (map[string]int64, error) {
	records, _ := m.ListByAssignment(ctx, assignmentID)
	counts := make(map[string]int64)
	for _, record := range records {
		counts[record.Status]++
	}
	return counts, nil
}

func (m *memoryStudentAssignmentRepo) GetByID(_ context.Context, id uint) (models.StudentAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.records[id]
	if !ok {
		return models.StudentAssignment{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (m *memoryStudentAssignmentRepo) Update(_ context.Context, record *models.StudentAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.records[record.ID] = *record
	return nil
}

func (m *memoryStudentAssignmentRepo) count(assignmentID uint) int {
	records, _ := m.ListByAssignment(context.Background(), assignmentID)
	return len(records)
}

type factoryFixture struct {
	tests              *memoryTestRepo
	assignments        *memoryAssignmentRepo
	enrollments        *memoryEnrollmentRepo
	studentAssignments *memoryStudentAssignmentRepo
	factory            AssignmentFactory
}

func newFactoryFixture() *factoryFixture {
	fixture := &factoryFixture{
		tests:              newMemoryTestRepo(),
		assignments:        newMemoryAssignmentRepo(),
		enrollments:        newMemoryEnrollmentRepo(),
		studentAssignments: newMemoryStudentAssignmentRepo(),
	}
	fixture.factory = NewAssignmentFactory(fixture.tests, fixture.assignments, fixture.enrollments, fixture.studentAssignments, testLogger())
	return fixture
}

func (f *factoryFixture) seedTest(classID uint, title string) models.Test {
	test := models.Test{Title: title, ClassID: classID, Questions: []models.Question{{Prompt: "2 + 2?", Points: 5}}}
	_ = f.tests.Create(context.Background(), &test)
	return test
}
