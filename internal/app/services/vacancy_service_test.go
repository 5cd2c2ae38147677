package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/app/repositories/inmem"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/cache"
)

func TestCountOccupantsMatchesActiveRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5", "A", "B")
	secA := section(t, class, "A")
	secB := section(t, class, "B")
	empty := f.class(t, "Class 12")

	f.student(t, "Ann", "", class.ID, secA, nil)
	f.student(t, "Bea", "", class.ID, secA, nil)
	f.student(t, "Cara", "", class.ID, secB, nil)
	gone := f.student(t, "Dev", "", class.ID, secA, nil)
	require.NoError(t, f.store.SoftDelete(ctx, gone.ID))

	occ, err := f.vacancy.CountOccupants(ctx, class.ID, secA)
	require.NoError(t, err)
	assert.EqualValues(t, 2, occ.Count)
	assert.False(t, occ.Vacant)
	assert.Equal(t, class.ID, occ.ClassID)
	assert.Equal(t, *secA, *occ.SectionID)

	occ, err = f.vacancy.CountOccupants(ctx, class.ID, secB)
	require.NoError(t, err)
	assert.EqualValues(t, 1, occ.Count)

	occ, err = f.vacancy.CountOccupants(ctx, empty.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, occ.Count)
	assert.True(t, occ.Vacant)
}

func TestCountOccupantsRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sectioned := f.class(t, "Class 5", "A")
	plain := f.class(t, "Class 6")

	_, err := f.vacancy.CountOccupants(ctx, 404, nil)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)

	_, err = f.vacancy.CountOccupants(ctx, sectioned.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.EqualError(t, err, "section required")

	_, err = f.vacancy.CountOccupants(ctx, sectioned.ID, models.Int64Ptr(999))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.vacancy.CountOccupants(ctx, plain.ID, section(t, sectioned, "A"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.EqualError(t, err, "invalid target section")
}

func TestCountOccupantsServesFromCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5")

	require.NoError(t, f.cache.SetInt64(ctx, cache.OccupancyKey(class.ID, nil), 17, time.Minute))
	occ, err := f.vacancy.CountOccupants(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 17, occ.Count)

	f.vacancy.Invalidate(ctx, models.Placement{ClassID: class.ID})
	occ, err = f.vacancy.CountOccupants(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, occ.Count)
}

type brokenCache struct{}

func (brokenCache) GetInt64(context.Context, string) (int64, bool, error) {
	return 0, false, errors.New("redis down")
}
func (brokenCache) SetInt64(context.Context, string, int64, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Delete(context.Context, ...string) error { return errors.New("redis down") }

func TestCountOccupantsFallsThroughCacheErrors(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	class := &models.Class{Name: "Class 1"}
	require.NoError(t, store.CreateClass(ctx, class))
	require.NoError(t, store.Create(ctx, &models.Student{AdmissionNumber: "A1", FirstName: "Ann", ClassID: class.ID, AcademicYear: "2024-2025"}))

	svc := NewVacancyService(store, store, brokenCache{}, time.Minute, zerolog.Nop())
	occ, err := svc.CountOccupants(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, occ.Count)

	svc.Invalidate(ctx, models.Placement{ClassID: class.ID})
}

// countHookStore runs onCount after reading a count and before it is returned.
type countHookStore struct {
	repositories.StudentStore
	onCount func()
}

func (s *countHookStore) CountActiveByPlacement(ctx context.Context, classID int64, sectionID *int64) (int64, error) {
	n, err := s.StudentStore.CountActiveByPlacement(ctx, classID, sectionID)
	if s.onCount != nil {
		s.onCount()
	}
	return n, err
}

func TestCountOccupantsSkipsCacheWhenInvalidatedDuringRead(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	class := &models.Class{Name: "Class 3"}
	require.NoError(t, store.CreateClass(ctx, class))
	require.NoError(t, store.Create(ctx, &models.Student{AdmissionNumber: "A1", FirstName: "Ann", ClassID: class.ID, AcademicYear: "2024-2025"}))

	hooked := &countHookStore{StudentStore: store}
	occupancy := cache.NewMemory()
	svc := NewVacancyService(hooked, store, occupancy, time.Minute, zerolog.Nop())
	key := cache.OccupancyKey(class.ID, nil)

	hooked.onCount = func() {
		svc.Invalidate(ctx, models.Placement{ClassID: class.ID})
	}
	occ, err := svc.CountOccupants(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, occ.Count)

	_, hit, err := occupancy.GetInt64(ctx, key)
	require.NoError(t, err)
	assert.False(t, hit, "a count read before invalidation must not be cached")

	hooked.onCount = nil
	_, err = svc.CountOccupants(ctx, class.ID, nil)
	require.NoError(t, err)
	cached, hit, err := occupancy.GetInt64(ctx, key)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.EqualValues(t, 1, cached)
}
