package services

import (
	"fmt"
	"strings"
	"time"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type StudentService struct {
	db           *gorm.DB
	scopeService *ClassSubjectService
}

func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{
		db:           db,
		scopeService: NewClassSubjectService(db),
	}
}

// StudentInput 学生创建/更新输入
type StudentInput struct {
	FirstName       string
	LastName        string
	AdmissionNumber string
	ClassID         *uint
	DateOfBirth     *time.Time
	Gender          string
	GuardianName    string
	GuardianPhone   string
}

// Create 创建学生
func (s *StudentService) Create(tenantID uint, input *StudentInput) (*models.Student, error) {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, errors.NewValidation("学生姓名不能为空")
	}
	if input.ClassID != nil {
		var class models.Class
		if err := s.db.Where("tenant_id = ?", tenantID).First(&class, *input.ClassID).Error; err != nil {
			return nil, err
		}
	}
	if input.AdmissionNumber != "" {
		var count int64
		s.db.Model(&models.Student{}).
			Where("tenant_id = ? AND admission_number = ?", tenantID, input.AdmissionNumber).
			Count(&count)
		if count > 0 {
			return nil, errors.NewValidation("学号已被使用")
		}
	}

	student := &models.Student{
		TenantID:        tenantID,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		AdmissionNumber: input.AdmissionNumber,
		ClassID:         input.ClassID,
		DateOfBirth:     input.DateOfBirth,
		Gender:          input.Gender,
		GuardianName:    input.GuardianName,
		GuardianPhone:   input.GuardianPhone,
		IsActive:        true,
	}
	if err := s.db.Create(student).Error; err != nil {
		return nil, err
	}
	return student, nil
}

// GetByID 根据ID获取学生
func (s *StudentService) GetByID(tenantID, id uint) (*models.Student, error) {
	var student models.Student
	err := s.db.Preload("Class").Where("tenant_id = ?", tenantID).First(&student, id).Error
	return &student, err
}

// GetForUser 按访问者身份获取学生：管理员全量，教师要求任教学生所在班级
func (s *StudentService) GetForUser(user *models.User, id uint) (*models.Student, error) {
	student, err := s.GetByID(user.TenantID, id)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.scopeService.userService.IsAdmin(user)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return student, nil
	}
	if student.ClassID == nil {
		return nil, errors.NewForbidden("您未任教该学生所在班级", nil, user.RoleNames())
	}
	if err := s.scopeService.RequireClassAccess(user, *student.ClassID); err != nil {
		return nil, err
	}
	return student, nil
}

// ListForUser 学生列表（分页），教师自动收敛到任课班级
func (s *StudentService) ListForUser(user *models.User, classID *uint, keyword string, page, pageSize int) ([]*models.Student, int64, error) {
	classIDs, unrestricted, err := s.scopeService.AllowedClassFilter(user, classID)
	if err != nil {
		return nil, 0, err
	}

	var students []*models.Student
	var total int64

	query := s.db.Model(&models.Student{}).Where("tenant_id = ?", user.TenantID)
	if !unrestricted {
		if len(classIDs) == 0 {
			return []*models.Student{}, 0, nil
		}
		query = query.Where("class_id IN ?", classIDs)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR admission_number LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Preload("Class").Order("last_name ASC, first_name ASC").
		Offset(offset).Limit(pageSize).Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// Update 更新学生
func (s *StudentService) Update(tenantID, id uint, input *StudentInput) (*models.Student, error) {
	student, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		student.FirstName = input.FirstName
	}
	if input.LastName != "" {
		student.LastName = input.LastName
	}
	if input.AdmissionNumber != "" && input.AdmissionNumber != student.AdmissionNumber {
		var count int64
		s.db.Model(&models.Student{}).
			Where("tenant_id = ? AND admission_number = ? AND id != ?", tenantID, input.AdmissionNumber, id).
			Count(&count)
		if count > 0 {
			return nil, errors.NewValidation("学号已被使用")
		}
		student.AdmissionNumber = input.AdmissionNumber
	}
	if input.ClassID != nil {
		var class models.Class
		if err := s.db.Where("tenant_id = ?", tenantID).First(&class, *input.ClassID).Error; err != nil {
			return nil, err
		}
		student.ClassID = input.ClassID
	}
	if input.DateOfBirth != nil {
		student.DateOfBirth = input.DateOfBirth
	}
	if input.Gender != "" {
		student.Gender = input.Gender
	}
	if input.GuardianName != "" {
		student.GuardianName = input.GuardianName
	}
	if input.GuardianPhone != "" {
		student.GuardianPhone = input.GuardianPhone
	}

	err = s.db.Save(student).Error
	return student, err
}

// SetActive 启用/停用学生
func (s *StudentService) SetActive(tenantID, id uint, active bool) (*models.Student, error) {
	student, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	student.IsActive = active
	err = s.db.Save(student).Error
	return student, err
}

// Delete 删除学生（软删除）
func (s *StudentService) Delete(tenantID, id uint) error {
	student, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(student).Error
}
