package services

import (
	"testing"
	"time"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBatchAttendance(t *testing.T) {
	f := newScopedFixture(t)
	service := NewAttendanceService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	dave := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Dave")

	date := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	records, err := service.RecordBatch(f.teacher, f.classA.ID, date, []AttendanceEntry{
		{StudentID: alice.ID, Status: models.AttendanceStatusPresent},
		{StudentID: dave.ID, Status: models.AttendanceStatusAbsent, Remark: "病假"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 日期按天归一
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), records[0].Date)
	assert.Equal(t, f.teacher.ID, records[0].RecordedBy)
}

func TestRecordBatchOverwritesSameDay(t *testing.T) {
	f := newScopedFixture(t)
	service := NewAttendanceService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	date := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	_, err := service.RecordBatch(f.teacher, f.classA.ID, date, []AttendanceEntry{
		{StudentID: alice.ID, Status: models.AttendanceStatusAbsent},
	})
	require.NoError(t, err)

	// 同日重复点名覆盖而非追加
	_, err = service.RecordBatch(f.teacher, f.classA.ID, date.Add(2*time.Hour), []AttendanceEntry{
		{StudentID: alice.ID, Status: models.AttendanceStatusLate},
	})
	require.NoError(t, err)

	var count int64
	f.db.Model(&models.Attendance{}).
		Where("tenant_id = ? AND student_id = ?", f.tenant.ID, alice.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var record models.Attendance
	require.NoError(t, f.db.Where("student_id = ?", alice.ID).First(&record).Error)
	assert.Equal(t, models.AttendanceStatusLate, record.Status)
}

func TestRecordBatchValidation(t *testing.T) {
	f := newScopedFixture(t)
	service := NewAttendanceService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	bob := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	date := time.Now()

	// 未任教班级
	_, err := service.RecordBatch(f.teacher, f.classB.ID, date, []AttendanceEntry{
		{StudentID: bob.ID, Status: models.AttendanceStatusPresent},
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	// 非法状态
	_, err = service.RecordBatch(f.teacher, f.classA.ID, date, []AttendanceEntry{
		{StudentID: alice.ID, Status: "vacationing"},
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 学生不属于该班级，整批回滚
	_, err = service.RecordBatch(f.teacher, f.classA.ID, date, []AttendanceEntry{
		{StudentID: alice.ID, Status: models.AttendanceStatusPresent},
		{StudentID: bob.ID, Status: models.AttendanceStatusPresent},
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	var count int64
	f.db.Model(&models.Attendance{}).Where("tenant_id = ?", f.tenant.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// 空批次
	_, err = service.RecordBatch(f.teacher, f.classA.ID, date, nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}

func TestAttendanceStudentSummary(t *testing.T) {
	f := newScopedFixture(t)
	service := NewAttendanceService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	statuses := []string{
		models.AttendanceStatusPresent,
		models.AttendanceStatusPresent,
		models.AttendanceStatusLate,
		models.AttendanceStatusAbsent,
	}
	for i, status := range statuses {
		_, err := service.RecordBatch(f.teacher, f.classA.ID, base.AddDate(0, 0, i), []AttendanceEntry{
			{StudentID: alice.ID, Status: status},
		})
		require.NoError(t, err)
	}

	summary, err := service.StudentSummary(f.tenant.ID, alice.ID, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, 2, summary.ByStatus[models.AttendanceStatusPresent])
	assert.Equal(t, 1, summary.ByStatus[models.AttendanceStatusLate])
	// 出勤率按(present+late)/total计：3/4
	assert.Equal(t, 75.0, summary.Rate)
}

func TestAttendanceListScoped(t *testing.T) {
	f := newScopedFixture(t)
	service := NewAttendanceService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	bob := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	date := time.Now()

	_, err := service.RecordBatch(f.teacher, f.classA.ID, date, []AttendanceEntry{
		{StudentID: alice.ID, Status: models.AttendanceStatusPresent},
	})
	require.NoError(t, err)
	_, err = service.RecordBatch(f.admin, f.classB.ID, date, []AttendanceEntry{
		{StudentID: bob.ID, Status: models.AttendanceStatusPresent},
	})
	require.NoError(t, err)

	_, total, err := service.ListForUser(f.admin, nil, nil, nil, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	records, total, err := service.ListForUser(f.teacher, nil, nil, nil, nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, alice.ID, records[0].StudentID)
}
