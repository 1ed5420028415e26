package services

import (
	"time"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type AttendanceService struct {
	db           *gorm.DB
	scopeService *ClassSubjectService
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{
		db:           db,
		scopeService: NewClassSubjectService(db),
	}
}

// AttendanceEntry 单条点名记录
type AttendanceEntry struct {
	StudentID uint
	Status    string
	Remark    string
}

func isValidAttendanceStatus(status string) bool {
	switch status {
	case models.AttendanceStatusPresent, models.AttendanceStatusAbsent,
		models.AttendanceStatusLate, models.AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// RecordBatch 整班点名：同一天同一班级重复点名时覆盖旧记录
func (s *AttendanceService) RecordBatch(user *models.User, classID uint, date time.Time, entries []AttendanceEntry) ([]*models.Attendance, error) {
	if err := s.scopeService.RequireClassAccess(user, classID); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.NewValidation("点名记录不能为空")
	}
	for _, entry := range entries {
		if !isValidAttendanceStatus(entry.Status) {
			return nil, errors.NewValidation("考勤状态只能是present、absent、late或excused")
		}
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	var records []*models.Attendance

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			var student models.Student
			if err := tx.Where("tenant_id = ?", user.TenantID).First(&student, entry.StudentID).Error; err != nil {
				return err
			}
			if student.ClassID == nil || *student.ClassID != classID {
				return errors.NewValidation("学生不属于该班级")
			}

			// 同日重复点名覆盖
			if err := tx.Where("tenant_id = ? AND class_id = ? AND student_id = ? AND date = ?",
				user.TenantID, classID, entry.StudentID, day).
				Delete(&models.Attendance{}).Error; err != nil {
				return err
			}

			record := &models.Attendance{
				TenantID:   user.TenantID,
				StudentID:  entry.StudentID,
				ClassID:    classID,
				Date:       day,
				Status:     entry.Status,
				Remark:     entry.Remark,
				RecordedBy: user.ID,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListForUser 考勤查询（分页），教师收敛到任课班级
func (s *AttendanceService) ListForUser(user *models.User, classID, studentID *uint, from, to *time.Time, page, pageSize int) ([]*models.Attendance, int64, error) {
	classIDs, unrestricted, err := s.scopeService.AllowedClassFilter(user, classID)
	if err != nil {
		return nil, 0, err
	}

	var records []*models.Attendance
	var total int64

	query := s.db.Model(&models.Attendance{}).Where("tenant_id = ?", user.TenantID)
	if !unrestricted {
		if len(classIDs) == 0 {
			return []*models.Attendance{}, 0, nil
		}
		query = query.Where("class_id IN ?", classIDs)
	}
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Order("date DESC, student_id ASC").Offset(offset).Limit(pageSize).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// AttendanceSummary 学生考勤汇总
type AttendanceSummary struct {
	StudentID uint           `json:"student_id"`
	Total     int64          `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
	Rate      float64        `json:"rate"` // 出勤率 = (present+late) / total
}

// StudentSummary 学生考勤汇总
func (s *AttendanceService) StudentSummary(tenantID, studentID uint, from, to *time.Time) (*AttendanceSummary, error) {
	var records []*models.Attendance
	query := s.db.Where("tenant_id = ? AND student_id = ?", tenantID, studentID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	summary := &AttendanceSummary{
		StudentID: studentID,
		Total:     int64(len(records)),
		ByStatus:  map[string]int{},
	}
	present := 0
	for _, r := range records {
		summary.ByStatus[r.Status]++
		if r.Status == models.AttendanceStatusPresent || r.Status == models.AttendanceStatusLate {
			present++
		}
	}
	if len(records) > 0 {
		summary.Rate = round2(float64(present) / float64(len(records)) * 100)
	}
	return summary, nil
}
