package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolhub/internal/app/models"
	"github.com/yigit/schoolhub/internal/pkg/apperrors"
)

func TestCreateDerivesNameAndAge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5", "A")
	dob := time.Date(2014, time.June, 15, 0, 0, 0, 0, time.UTC)

	created, err := f.students.Create(ctx, &models.Student{
		AdmissionNumber: "ADM-77",
		AttendanceID:    "ATT-77",
		FirstName:       " Asha ",
		MiddleName:      "",
		LastName:        "Rao",
		DateOfBirth:     &dob,
		Age:             99,
		ClassID:         class.ID,
		SectionID:       section(t, class, "A"),
		AcademicYear:    "2024-2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", created.Name)
	assert.Equal(t, 10, created.Age)
	assert.Equal(t, models.StudentStatusActive, created.Status)

	_, err = f.students.Create(ctx, &models.Student{AdmissionNumber: "ADM-78", FirstName: "Bea", ClassID: class.ID, AcademicYear: "2024-2025"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.students.Create(ctx, &models.Student{AdmissionNumber: "ADM-79", FirstName: "Cara", ClassID: 404, AcademicYear: "2024-2025"})
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5", "A")
	st := f.student(t, "Asha", "Rao", class.ID, section(t, class, "A"), intPtr(3))
	before := f.reload(t, st.ID)

	require.NoError(t, f.students.SoftDelete(ctx, st.ID))
	roster, total, err := f.students.List(ctx, models.StudentFilter{ClassID: &class.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, roster)

	bin, total, err := f.students.ListBin(ctx, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, st.ID, bin[0].ID)

	require.NoError(t, f.students.Restore(ctx, st.ID))
	after := f.reload(t, st.ID)
	assert.Equal(t, before, after)
}

func TestLifecycleConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5")
	st := f.student(t, "Asha", "", class.ID, nil, nil)

	err := f.students.Restore(ctx, st.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.EqualError(t, err, "student is not in the bin")

	err = f.students.PermanentlyDelete(ctx, st.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.EqualError(t, err, "student must be moved to the bin before permanent deletion")

	require.NoError(t, f.students.SoftDelete(ctx, st.ID))
	err = f.students.SoftDelete(ctx, st.ID)
	assert.EqualError(t, err, "student is already in the bin")

	assert.ErrorIs(t, f.students.SoftDelete(ctx, 404), apperrors.ErrStudentNotFound)
}

func TestPermanentDeleteBlockedByHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5")
	st := f.student(t, "Asha", "", class.ID, nil, nil)
	f.store.AddReference(st.ID, "fee_payments")
	require.NoError(t, f.students.SoftDelete(ctx, st.ID))

	err := f.students.PermanentlyDelete(ctx, st.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrReferentialIntegrity))

	var refErr *apperrors.ReferentialIntegrityError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "fee_payments", refErr.Table)

	_, err = f.students.GetByID(ctx, st.ID)
	assert.NoError(t, err, "blocked delete leaves the student in the bin")
}

func TestBulkOperationsReportPerStudent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := f.class(t, "Class 5")
	a := f.student(t, "Ann", "", class.ID, nil, nil)
	b := f.student(t, "Bea", "", class.ID, nil, nil)
	c := f.student(t, "Cara", "", class.ID, nil, nil)
	require.NoError(t, f.students.SoftDelete(ctx, b.ID))

	result := f.students.BulkSoftDelete(ctx, []int64{a.ID, b.ID, c.ID, 404})
	assert.Equal(t, []int64{a.ID, c.ID}, result.Succeeded)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, b.ID, result.Failed[0].StudentID)
	assert.Equal(t, "student is already in the bin", result.Failed[0].Reason)
	assert.Equal(t, int64(404), result.Failed[1].StudentID)
	assert.Equal(t, "student not found", result.Failed[1].Reason)

	f.store.AddReference(c.ID, "marks")
	result = f.students.BulkPermanentlyDelete(ctx, []int64{a.ID, c.ID})
	assert.Equal(t, []int64{a.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, c.ID, result.Failed[0].StudentID)
	assert.Contains(t, result.Failed[0].Reason, "marks")

	result = f.students.BulkRestore(ctx, []int64{b.ID, c.ID, a.ID})
	assert.Equal(t, []int64{b.ID, c.ID}, result.Succeeded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, a.ID, result.Failed[0].StudentID)
}

func TestListClassesNumericOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.class(t, "Class 10", "B", "A")
	f.class(t, "Nursery")
	f.class(t, "Class 2")
	f.class(t, "Class 1")

	classes, err := f.classes.ListClasses(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Class 1", "Class 2", "Class 10", "Nursery"}, names)
	assert.Equal(t, "A", classes[2].Sections[0].Name)
}
