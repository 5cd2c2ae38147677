package inmem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/app/repositories"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
)

func seedClass(t *testing.T, s *Store, name string, sections ...string) *models.Class {
	t.Helper()
	ctx := context.Background()
	class := &models.Class{Name: name}
	require.NoError(t, s.CreateClass(ctx, class))
	for _, sec := range sections {
		require.NoError(t, s.CreateSection(ctx, &models.Section{ClassID: class.ID, Name: sec}))
	}
	got, err := s.GetClass(ctx, class.ID)
	require.NoError(t, err)
	return got
}

func seedStudent(t *testing.T, s *Store, adm, first string, classID int64, sectionID *int64, roll *int) *models.Student {
	t.Helper()
	student := &models.Student{
		AdmissionNumber: adm,
		AttendanceID:    "ATT-" + adm,
		FirstName:       first,
		ClassID:         classID,
		SectionID:       sectionID,
		RollNumber:      roll,
		AcademicYear:    "2024-2025",
	}
	require.NoError(t, s.Create(context.Background(), student))
	return student
}

func intPtr(v int) *int { return &v }

func TestCreateRejectsDuplicates(t *testing.T) {
	s := NewStore()
	class := seedClass(t, s, "Class 5", "A")
	sec := models.Int64Ptr(class.Sections[0].ID)

	seedStudent(t, s, "ADM-1", "Asha", class.ID, sec, intPtr(1))

	err := s.Create(context.Background(), &models.Student{AdmissionNumber: "ADM-1", ClassID: class.ID})
	assert.ErrorIs(t, err, apperrors.ErrAdmissionNumberTaken)

	err = s.Create(context.Background(), &models.Student{AdmissionNumber: "ADM-2", ClassID: class.ID, SectionID: sec, RollNumber: intPtr(1)})
	assert.ErrorIs(t, err, apperrors.ErrRollNumberTaken)

	err = s.Create(context.Background(), &models.Student{AdmissionNumber: "ADM-3", ClassID: 999})
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestListActiveByPlacementOrder(t *testing.T) {
	s := NewStore()
	class := seedClass(t, s, "Class 3")

	c := seedStudent(t, s, "C", "Cara", class.ID, nil, nil)
	b := seedStudent(t, s, "B", "Bea", class.ID, nil, intPtr(2))
	a := seedStudent(t, s, "A", "Ann", class.ID, nil, intPtr(1))
	d := seedStudent(t, s, "D", "Dev", class.ID, nil, nil)

	list, err := s.ListActiveByPlacement(context.Background(), class.ID, nil)
	require.NoError(t, err)

	ids := make([]int64, 0, len(list))
	for _, st := range list {
		ids = append(ids, st.ID)
	}
	assert.Equal(t, []int64{a.ID, b.ID, c.ID, d.ID}, ids)
}

func TestLifecycleStateMachine(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	class := seedClass(t, s, "Class 1")
	st := seedStudent(t, s, "ADM-1", "Asha", class.ID, nil, intPtr(4))

	assert.ErrorIs(t, s.Restore(ctx, st.ID), apperrors.ErrStudentNotDeleted)
	assert.ErrorIs(t, s.PermanentlyDelete(ctx, st.ID), apperrors.ErrStudentStillActive)

	require.NoError(t, s.SoftDelete(ctx, st.ID))
	assert.ErrorIs(t, s.SoftDelete(ctx, st.ID), apperrors.ErrStudentAlreadyDeleted)

	count, err := s.CountActiveByPlacement(ctx, class.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	binned, err := s.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusDeleted, binned.Status)
	assert.NotNil(t, binned.DeletedAt)

	require.NoError(t, s.Restore(ctx, st.ID))
	restored, err := s.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusActive, restored.Status)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, 4, *restored.RollNumber)

	require.NoError(t, s.SoftDelete(ctx, st.ID))
	require.NoError(t, s.PermanentlyDelete(ctx, st.ID))
	_, err = s.GetByID(ctx, st.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.ErrorIs(t, s.Restore(ctx, st.ID), apperrors.ErrStudentNotFound)
}

func TestRestoreRollCollision(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	class := seedClass(t, s, "Class 2")
	first := seedStudent(t, s, "A", "Ann", class.ID, nil, intPtr(1))
	require.NoError(t, s.SoftDelete(ctx, first.ID))
	seedStudent(t, s, "B", "Bea", class.ID, nil, intPtr(1))

	assert.ErrorIs(t, s.Restore(ctx, first.ID), apperrors.ErrRollNumberTaken)
}

func TestPermanentDeleteBlockedByReferences(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	class := seedClass(t, s, "Class 2")

	withHistory := seedStudent(t, s, "A", "Ann", class.ID, nil, nil)
	s.AddReference(withHistory.ID, "attendance_records")
	require.NoError(t, s.SoftDelete(ctx, withHistory.ID))

	err := s.PermanentlyDelete(ctx, withHistory.ID)
	var refErr *apperrors.ReferentialIntegrityError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "attendance_records", refErr.Table)
	assert.Equal(t, "attendance_records_student_id_fkey", refErr.Constraint)

	promoted := seedStudent(t, s, "B", "Bea", class.ID, nil, nil)
	require.NoError(t, s.AppendPromotionRecord(ctx, &models.PromotionRecord{StudentID: promoted.ID, ToClassID: class.ID}))
	require.NoError(t, s.SoftDelete(ctx, promoted.ID))

	err = s.PermanentlyDelete(ctx, promoted.ID)
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "promotion_records", refErr.Table)

	_, err = s.GetByID(ctx, promoted.ID)
	assert.NoError(t, err)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	from := seedClass(t, s, "Class 4")
	to := seedClass(t, s, "Class 5")
	st := seedStudent(t, s, "A", "Ann", from.ID, nil, intPtr(3))

	boom := errors.New("audit write failed")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.StudentStore) error {
		require.NoError(t, tx.UpdatePlacement(ctx, st.ID, models.Placement{ClassID: to.ID, AcademicYear: "2025-2026"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, from.ID, got.ClassID)
	assert.Equal(t, "2024-2025", got.AcademicYear)
	assert.Equal(t, 3, *got.RollNumber)

	err = s.WithinTx(ctx, func(ctx context.Context, tx repositories.StudentStore) error {
		return tx.WithinTx(ctx, func(ctx context.Context, inner repositories.StudentStore) error {
			return inner.UpdatePlacement(ctx, st.ID, models.Placement{ClassID: to.ID, AcademicYear: "2025-2026"})
		})
	})
	require.NoError(t, err)

	got, err = s.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, to.ID, got.ClassID)
	assert.Nil(t, got.RollNumber)
}

func TestRollbackKeepsWritesMadeOutsideTx(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	from := seedClass(t, s, "Class 8")
	to := seedClass(t, s, "Class 9")
	a := seedStudent(t, s, "A", "Ann", from.ID, nil, nil)
	b := seedStudent(t, s, "B", "Bea", from.ID, nil, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	boom := errors.New("audit write failed")

	go func() {
		txErr <- s.WithinTx(ctx, func(ctx context.Context, tx repositories.StudentStore) error {
			if err := tx.UpdatePlacement(ctx, a.ID, models.Placement{ClassID: to.ID, AcademicYear: "2025-2026"}); err != nil {
				return err
			}
			close(entered)
			<-release
			return boom
		})
	}()
	<-entered

	deleted := make(chan error, 1)
	go func() { deleted <- s.SoftDelete(ctx, b.ID) }()

	select {
	case err := <-deleted:
		t.Fatalf("soft delete finished while a transaction was open: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-txErr, boom)
	require.NoError(t, <-deleted)

	got, err := s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StudentStatusDeleted, got.Status)
	assert.NotNil(t, got.DeletedAt)

	got, err = s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, from.ID, got.ClassID)
}

func TestAssignRollNumbersAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	class := seedClass(t, s, "Class 6")
	a := seedStudent(t, s, "A", "Ann", class.ID, nil, intPtr(2))
	b := seedStudent(t, s, "B", "Bea", class.ID, nil, intPtr(1))
	other := seedClass(t, s, "Class 7")
	outsider := seedStudent(t, s, "X", "Xia", other.ID, nil, nil)

	err := s.AssignRollNumbers(ctx, class.ID, nil, []models.RollAssignment{
		{StudentID: a.ID, RollNumber: 1},
		{StudentID: outsider.ID, RollNumber: 2},
	})
	require.Error(t, err)

	got, _ := s.GetByID(ctx, a.ID)
	assert.Equal(t, 2, *got.RollNumber)

	require.NoError(t, s.AssignRollNumbers(ctx, class.ID, nil, []models.RollAssignment{
		{StudentID: a.ID, RollNumber: 1},
		{StudentID: b.ID, RollNumber: 2},
	}))
	got, _ = s.GetByID(ctx, a.ID)
	assert.Equal(t, 1, *got.RollNumber)
	got, _ = s.GetByID(ctx, b.ID)
	assert.Equal(t, 2, *got.RollNumber)
}

func TestListFiltersAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	class := seedClass(t, s, "Class 8", "A", "B")
	secA := models.Int64Ptr(class.Sections[0].ID)
	secB := models.Int64Ptr(class.Sections[1].ID)

	seedStudent(t, s, "A1", "Asha", class.ID, secA, intPtr(1))
	seedStudent(t, s, "A2", "Bilal", class.ID, secA, intPtr(2))
	seedStudent(t, s, "B1", "Chen", class.ID, secB, intPtr(1))
	gone := seedStudent(t, s, "B2", "Dana", class.ID, secB, intPtr(2))
	require.NoError(t, s.SoftDelete(ctx, gone.ID))

	list, total, err := s.List(ctx, models.StudentFilter{ClassID: &class.ID, SectionID: secA})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = s.List(ctx, models.StudentFilter{Search: "che"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Chen", list[0].Name)

	list, total, err = s.List(ctx, models.StudentFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)

	bin, total, err := s.List(ctx, models.StudentFilter{Status: models.StudentStatusDeleted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, gone.ID, bin[0].ID)
}
