package services

import (
	"sort"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

// TermReportService 学期报告：基于成绩聚合引擎生成快照并计算班级排名
type TermReportService struct {
	db          *gorm.DB
	calcService *GradeCalcService
}

func NewTermReportService(db *gorm.DB) *TermReportService {
	return &TermReportService{
		db:          db,
		calcService: NewGradeCalcService(db),
	}
}

// GenerateForClass 为整个班级生成学期报告
// 旧报告覆盖重生成，排名按总平均从高到低，同分并列
func (s *TermReportService) GenerateForClass(user *models.User, classID, termID uint) ([]*models.TermReport, error) {
	tenantID := user.TenantID

	var class models.Class
	if err := s.db.Where("tenant_id = ?", tenantID).First(&class, classID).Error; err != nil {
		return nil, err
	}
	var term models.Term
	if err := s.db.Where("tenant_id = ?", tenantID).First(&term, termID).Error; err != nil {
		return nil, err
	}

	var students []*models.Student
	if err := s.db.Where("tenant_id = ? AND class_id = ? AND is_active = ?", tenantID, classID, true).
		Find(&students).Error; err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, errors.NewValidation("班级下没有在读学生")
	}

	type rankedReport struct {
		report  *models.TermReport
		average float64
	}
	ranked := make([]rankedReport, 0, len(students))

	for _, student := range students {
		// 报告为管理口径，含未发布成绩
		summary, err := s.calcService.StudentSummaryReport(tenantID, student.ID, &termID, false)
		if err != nil {
			return nil, err
		}
		report := &models.TermReport{
			TenantID:       tenantID,
			StudentID:      student.ID,
			TermID:         termID,
			ClassID:        classID,
			OverallAverage: summary.OverallAverage,
			OverallGPA:     summary.OverallGPA,
			LetterGrade:    summary.OverallLetter,
			GeneratedBy:    user.ID,
		}
		ranked = append(ranked, rankedReport{report: report, average: summary.OverallAverage})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].average > ranked[j].average
	})
	for i := range ranked {
		position := i + 1
		if i > 0 && ranked[i].average == ranked[i-1].average {
			position = *ranked[i-1].report.Position
		}
		ranked[i].report.Position = &position
	}

	reports := make([]*models.TermReport, 0, len(ranked))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND class_id = ? AND term_id = ?", tenantID, classID, termID).
			Delete(&models.TermReport{}).Error; err != nil {
			return err
		}
		for _, r := range ranked {
			if err := tx.Create(r.report).Error; err != nil {
				return err
			}
			reports = append(reports, r.report)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// GetByStudent 学生的学期报告
func (s *TermReportService) GetByStudent(tenantID, studentID, termID uint) (*models.TermReport, error) {
	var report models.TermReport
	err := s.db.Where("tenant_id = ? AND student_id = ? AND term_id = ?", tenantID, studentID, termID).
		First(&report).Error
	return &report, err
}

// ListByClass 班级全部学期报告（按排名升序）
func (s *TermReportService) ListByClass(tenantID, classID, termID uint) ([]*models.TermReport, error) {
	var reports []*models.TermReport
	err := s.db.Where("tenant_id = ? AND class_id = ? AND term_id = ?", tenantID, classID, termID).
		Order("position ASC").Find(&reports).Error
	return reports, err
}

// UpdateRemarks 补写班主任评语
func (s *TermReportService) UpdateRemarks(tenantID, id uint, remarks string) (*models.TermReport, error) {
	var report models.TermReport
	if err := s.db.Where("tenant_id = ?", tenantID).First(&report, id).Error; err != nil {
		return nil, err
	}
	report.Remarks = remarks
	err := s.db.Save(&report).Error
	return &report, err
}
