package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/app/repositories/inmem"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
	"github.com/yigit/schoolhub/internal/pkg/cache"
)

func TestPromoteReportsMissingStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class5 := f.class(t, "Class 5", "A")
	class6 := f.class(t, "Class 6", "A", "B")
	toSection := section(t, class6, "B")

	s10 := f.student(t, "Asha", "Rao", class5.ID, section(t, class5, "A"), intPtr(1))
	s11 := f.student(t, "Bilal", "Khan", class5.ID, section(t, class5, "A"), intPtr(2))

	result, err := f.promotion.Promote(ctx, models.PromotionRequest{
		StudentIDs:     []int64{s10.ID, s11.ID, 999},
		ToClassID:      class6.ID,
		ToSectionID:    toSection,
		ToAcademicYear: "2025-2026",
	}, "office@school.test")
	require.NoError(t, err)

	assert.Equal(t, 2, result.PromotedCount)
	assert.Equal(t, []models.PromotionFailure{{StudentID: 999, Reason: "student not found"}}, result.Failed)
	assert.Equal(t, "Promoted 2 of 3 students.", result.Message)

	for _, id := range []int64{s10.ID, s11.ID} {
		st := f.reload(t, id)
		assert.Equal(t, class6.ID, st.ClassID)
		assert.Equal(t, *toSection, *st.SectionID)
		assert.Equal(t, "2025-2026", st.AcademicYear)
		assert.Nil(t, st.RollNumber, "roll numbers belong to the old placement")

		history, err := f.promotion.History(ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		rec := history[0]
		assert.Equal(t, result.BatchID, rec.BatchID)
		assert.Equal(t, class5.ID, rec.FromClassID)
		assert.Equal(t, "2024-2025", rec.FromAcademicYear)
		assert.Equal(t, class6.ID, rec.ToClassID)
		assert.Equal(t, "2025-2026", rec.ToAcademicYear)
		assert.Equal(t, "office@school.test", rec.Actor)
		assert.Equal(t, fixedNow, rec.PromotedAt)
	}
}

func TestPromoteBatchIndependence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	from := f.class(t, "Class 1")
	to := f.class(t, "Class 2")

	ids := make([]int64, 0, 5)
	for _, name := range []string{"Ann", "Bea", "Cara", "Dev"} {
		ids = append(ids, f.student(t, name, "", from.ID, nil, nil).ID)
	}
	binned := f.student(t, "Eli", "", from.ID, nil, nil)
	require.NoError(t, f.store.SoftDelete(ctx, binned.ID))
	ids = append(ids[:2], append([]int64{binned.ID}, ids[2:]...)...)

	result, err := f.promotion.Promote(ctx, models.PromotionRequest{
		StudentIDs:     ids,
		ToClassID:      to.ID,
		ToAcademicYear: "2025-2026",
	}, "system")
	require.NoError(t, err)

	assert.Equal(t, len(ids)-1, result.PromotedCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, binned.ID, result.Failed[0].StudentID)
	assert.Equal(t, "student not found", result.Failed[0].Reason)

	for _, id := range ids {
		st := f.reload(t, id)
		if id == binned.ID {
			assert.Equal(t, from.ID, st.ClassID)
			continue
		}
		assert.Equal(t, to.ID, st.ClassID)
		assert.Equal(t, "2025-2026", st.AcademicYear)
	}
}

func TestPromoteHistoryIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.class(t, "Class 1")
	c2 := f.class(t, "Class 2")
	c3 := f.class(t, "Class 3")
	st := f.student(t, "Asha", "Rao", c1.ID, nil, nil)

	_, err := f.promotion.Promote(ctx, models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: c2.ID, ToAcademicYear: "2025-2026"}, "a")
	require.NoError(t, err)
	first, err := f.promotion.History(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	snapshot := *first[0]

	_, err = f.promotion.Promote(ctx, models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: c3.ID, ToAcademicYear: "2026-2027", Notes: "second"}, "b")
	require.NoError(t, err)
	history, err := f.promotion.History(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, snapshot, *history[0])
	assert.Equal(t, c2.ID, history[1].FromClassID)
	assert.Equal(t, c3.ID, history[1].ToClassID)
	assert.Equal(t, "second", history[1].Notes)
}

func TestPromoteSamePlacementIsStillAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 4")
	st := f.student(t, "Asha", "", class.ID, nil, nil)

	result, err := f.promotion.Promote(ctx, models.PromotionRequest{
		StudentIDs:     []int64{st.ID},
		ToClassID:      class.ID,
		ToAcademicYear: "2024-2025",
	}, "system")
	require.NoError(t, err)
	assert.Equal(t, 1, result.PromotedCount)

	history, err := f.promotion.History(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPromoteValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sectioned := f.class(t, "Class 6", "A")
	plain := f.class(t, "Class 7")
	other := f.class(t, "Class 8", "Z")
	st := f.student(t, "Asha", "", plain.ID, nil, nil)

	tooMany := make([]int64, DefaultMaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}

	tests := []struct {
		name string
		req  models.PromotionRequest
		want string
	}{
		{
			name: "empty selection",
			req:  models.PromotionRequest{ToClassID: plain.ID, ToAcademicYear: "2025-2026"},
			want: "no students selected",
		},
		{
			name: "duplicate id",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID, st.ID}, ToClassID: plain.ID, ToAcademicYear: "2025-2026"},
			want: "duplicate student id 1",
		},
		{
			name: "batch too large",
			req:  models.PromotionRequest{StudentIDs: tooMany, ToClassID: plain.ID, ToAcademicYear: "2025-2026"},
			want: "too many students selected",
		},
		{
			name: "zero class",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToAcademicYear: "2025-2026"},
			want: "invalid target class",
		},
		{
			name: "unknown class",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: 404, ToAcademicYear: "2025-2026"},
			want: "invalid target class",
		},
		{
			name: "missing section",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: sectioned.ID, ToAcademicYear: "2025-2026"},
			want: "section required",
		},
		{
			name: "section of another class",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: sectioned.ID, ToSectionID: section(t, other, "Z"), ToAcademicYear: "2025-2026"},
			want: "section required",
		},
		{
			name: "section on a class without sections",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: plain.ID, ToSectionID: section(t, sectioned, "A"), ToAcademicYear: "2025-2026"},
			want: "invalid target section",
		},
		{
			name: "blank academic year",
			req:  models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: plain.ID, ToAcademicYear: "   "},
			want: "academic year required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.promotion.Promote(ctx, tt.req, "system")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
			assert.EqualError(t, err, tt.want)

			history, err := f.promotion.History(ctx, st.ID)
			require.NoError(t, err)
			assert.Empty(t, history, "a rejected request writes nothing")
		})
	}
}

// failingAppendStore fails AppendPromotionRecord for one student, inside or outside a transaction.
type failingAppendStore struct {
	repositories.StudentStore
	failFor int64
}

func (s *failingAppendStore) AppendPromotionRecord(ctx context.Context, rec *models.PromotionRecord) error {
	if rec.StudentID == s.failFor {
		return apperrors.NewStorageError("promotion_record.append", errors.New("disk full"))
	}
	return s.StudentStore.AppendPromotionRecord(ctx, rec)
}

func (s *failingAppendStore) WithinTx(ctx context.Context, fn func(ctx context.Context, store repositories.StudentStore) error) error {
	return s.StudentStore.WithinTx(ctx, func(ctx context.Context, tx repositories.StudentStore) error {
		return fn(ctx, &failingAppendStore{StudentStore: tx, failFor: s.failFor})
	})
}

func TestPromoteAuditFailureRollsBackPlacement(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	var failing *failingAppendStore
	f := newFixtureWithStore(t, store, func(inner repositories.StudentStore) repositories.StudentStore {
		failing = &failingAppendStore{StudentStore: inner}
		return failing
	})
	from := f.class(t, "Class 1")
	to := f.class(t, "Class 2")
	ok := f.student(t, "Ann", "", from.ID, nil, intPtr(1))
	bad := f.student(t, "Bea", "", from.ID, nil, intPtr(2))
	failing.failFor = bad.ID

	result, err := f.promotion.Promote(ctx, models.PromotionRequest{
		StudentIDs:     []int64{ok.ID, bad.ID},
		ToClassID:      to.ID,
		ToAcademicYear: "2025-2026",
	}, "system")
	require.NoError(t, err)

	assert.Equal(t, 1, result.PromotedCount)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, bad.ID, result.Failed[0].StudentID)
	assert.Equal(t, "promotion_record.append: disk full", result.Failed[0].Reason)
	assert.Equal(t, "Promoted 1 of 2 students.", result.Message)

	unchanged := f.reload(t, bad.ID)
	assert.Equal(t, from.ID, unchanged.ClassID)
	assert.Equal(t, "2024-2025", unchanged.AcademicYear)
	assert.Equal(t, 2, *unchanged.RollNumber)

	history, err := f.promotion.History(ctx, bad.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPromoteInvalidatesOccupancyCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	from := f.class(t, "Class 1")
	to := f.class(t, "Class 2")
	st := f.student(t, "Ann", "", from.ID, nil, nil)

	occ, err := f.vacancy.CountOccupants(ctx, to.ID, nil)
	require.NoError(t, err)
	assert.True(t, occ.Vacant)
	_, hit, _ := f.cache.GetInt64(ctx, cache.OccupancyKey(to.ID, nil))
	require.True(t, hit)

	_, err = f.promotion.Promote(ctx, models.PromotionRequest{StudentIDs: []int64{st.ID}, ToClassID: to.ID, ToAcademicYear: "2025-2026"}, "system")
	require.NoError(t, err)

	occ, err = f.vacancy.CountOccupants(ctx, to.ID, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, occ.Count)
	assert.False(t, occ.Vacant)

	occ, err = f.vacancy.CountOccupants(ctx, from.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, occ.Count)
}

func TestHistoryUnknownStudent(t *testing.T) {
	f := newFixture(t)
	_, err := f.promotion.History(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
