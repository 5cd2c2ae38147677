package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/app/repositories/inmem"
	"github.com/yigit/schoolhub/internal/pkg/cache"
)

var fixedNow = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store     *inmem.Store
	cache     *cache.Memory
	vacancy   VacancyService
	promotion PromotionService
	rolls     RollNumberService
	students  StudentService
	classes   ClassService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, inmem.NewStore(), nil)
}

// newFixtureWithStore lets a test wrap the student store, e.g. to inject write failures.
func newFixtureWithStore(t *testing.T, store *inmem.Store, wrap func(repositories.StudentStore) repositories.StudentStore) *fixture {
	t.Helper()
	log := zerolog.Nop()

	var students repositories.StudentStore = store
	if wrap != nil {
		students = wrap(store)
	}

	occupancy := cache.NewMemory()
	vacancy := NewVacancyService(students, store, occupancy, time.Minute, log)

	promotion := NewPromotionService(students, store, vacancy, 0, log)
	impl := promotion.(*promotionServiceImpl)
	impl.now = func() time.Time { return fixedNow }
	impl.newBatchID = func() uuid.UUID { return uuid.MustParse("4a1f0c6e-3b0d-4c55-9f61-2a9e0b7f5d11") }

	studentSvc := NewStudentService(students, store, vacancy, 4, log)
	studentSvc.(*studentServiceImpl).now = func() time.Time { return fixedNow }

	return &fixture{
		store:     store,
		cache:     occupancy,
		vacancy:   vacancy,
		promotion: promotion,
		rolls:     NewRollNumberService(students, store, log),
		students:  studentSvc,
		classes:   NewClassService(store),
	}
}

func (f *fixture) class(t *testing.T, name string, sections ...string) *models.Class {
	t.Helper()
	ctx := context.Background()
	class := &models.Class{Name: name}
	require.NoError(t, f.store.CreateClass(ctx, class))
	for _, s := range sections {
		require.NoError(t, f.store.CreateSection(ctx, &models.Section{ClassID: class.ID, Name: s}))
	}
	got, err := f.store.GetClass(ctx, class.ID)
	require.NoError(t, err)
	return got
}

// section returns the id of the named section of class.
func section(t *testing.T, class *models.Class, name string) *int64 {
	t.Helper()
	for _, s := range class.Sections {
		if s.Name == name {
			return models.Int64Ptr(s.ID)
		}
	}
	t.Fatalf("class %q has no section %q", class.Name, name)
	return nil
}

func (f *fixture) student(t *testing.T, first, last string, classID int64, sectionID *int64, roll *int) *models.Student {
	t.Helper()
	st := &models.Student{
		AdmissionNumber: "ADM-" + uuid.NewString()[:8],
		AttendanceID:    "ATT-" + uuid.NewString()[:8],
		FirstName:       first,
		LastName:        last,
		ClassID:         classID,
		SectionID:       sectionID,
		RollNumber:      roll,
		AcademicYear:    "2024-2025",
	}
	require.NoError(t, f.store.Create(context.Background(), st))
	return st
}

func (f *fixture) reload(t *testing.T, id int64) *models.Student {
	t.Helper()
	st, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return st
}

func intPtr(v int) *int { return &v }
