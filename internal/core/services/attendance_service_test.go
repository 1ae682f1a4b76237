package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/models"
	"github.com/ugonnamorgan8-netizen/marvel/internal/adapters/persistence/repositories"
)

func newAttendanceService(t *testing.T) (*AttendanceService, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	svc := NewAttendanceService(
		repositories.NewAttendanceRepository(db),
		repositories.NewStudentRepository(db),
	)
	return svc, db
}

func TestMarkAbsentPersistsAbsence(t *testing.T) {
	ctx := context.Background()
	svc, db := newAttendanceService(t)
	student := seedStudent(t, db, "MDS250031", models.StudentActive)

	record, err := svc.Mark(ctx, &MarkInput{
		StudentID: student.ID,
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Type:      models.AttendanceTheory,
		Present:   false,
	})
	require.NoError(t, err)

	// The stored row must reflect the absence, not flip back to present
	var stored models.Attendance
	require.NoError(t, db.First(&stored, record.ID).Error)
	assert.False(t, stored.Present)
}

func TestMarkUnknownStudent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService(t)

	_, err := svc.Mark(ctx, &MarkInput{
		StudentID: 9999,
		Date:      time.Now(),
		Type:      models.AttendancePractical,
		Present:   true,
	})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentSummaryCountsAbsences(t *testing.T) {
	ctx := context.Background()
	svc, db := newAttendanceService(t)
	student := seedStudent(t, db, "MDS250032", models.StudentActive)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, present := range []bool{true, true, false, true} {
		_, err := svc.Mark(ctx, &MarkInput{
			StudentID: student.ID,
			Date:      day.AddDate(0, 0, i),
			Type:      models.AttendanceTheory,
			Present:   present,
		})
		require.NoError(t, err)
	}

	_, summary, err := svc.StudentSummary(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.InDelta(t, 75.0, summary.Rate, 0.001)
}
