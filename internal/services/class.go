package services

import (
	"fmt"
	"strings"

	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

type ClassService struct {
	db           *gorm.DB
	scopeService *ClassSubjectService
}

func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{
		db:           db,
		scopeService: NewClassSubjectService(db),
	}
}

// Create 创建班级
func (s *ClassService) Create(tenantID uint, name, level, section string, teacherID *uint) (*models.Class, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("班级名称不能为空")
	}
	if teacherID != nil {
		if _, err := s.scopeService.userService.GetByIDInTenant(tenantID, *teacherID); err != nil {
			return nil, err
		}
	}

	var count int64
	s.db.Model(&models.Class{}).
		Where("tenant_id = ? AND LOWER(name) = ?", tenantID, strings.ToLower(name)).
		Count(&count)
	if count > 0 {
		return nil, errors.NewValidation("班级名称已存在")
	}

	class := &models.Class{
		TenantID:  tenantID,
		Name:      name,
		Level:     level,
		Section:   section,
		TeacherID: teacherID,
	}
	if err := s.db.Create(class).Error; err != nil {
		return nil, err
	}
	return class, nil
}

// GetByID 根据ID获取班级
func (s *ClassService) GetByID(tenantID, id uint) (*models.Class, error) {
	var class models.Class
	err := s.db.Where("tenant_id = ?", tenantID).First(&class, id).Error
	return &class, err
}

// ListForUser 班级列表，教师只看到任课班级
func (s *ClassService) ListForUser(user *models.User, keyword string, page, pageSize int) ([]*models.Class, int64, error) {
	classIDs, unrestricted, err := s.scopeService.AllowedClassFilter(user, nil)
	if err != nil {
		return nil, 0, err
	}

	var classes []*models.Class
	var total int64

	query := s.db.Model(&models.Class{}).Where("tenant_id = ?", user.TenantID)
	if !unrestricted {
		if len(classIDs) == 0 {
			return []*models.Class{}, 0, nil
		}
		query = query.Where("id IN ?", classIDs)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR level LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Order("level ASC, name ASC").Offset(offset).Limit(pageSize).Find(&classes).Error
	if err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

// Update 更新班级
func (s *ClassService) Update(tenantID, id uint, name, level, section string, teacherID *uint) (*models.Class, error) {
	class, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if name != "" && !strings.EqualFold(name, class.Name) {
		var count int64
		s.db.Model(&models.Class{}).
			Where("tenant_id = ? AND LOWER(name) = ? AND id != ?", tenantID, strings.ToLower(name), id).
			Count(&count)
		if count > 0 {
			return nil, errors.NewValidation("班级名称已存在")
		}
		class.Name = name
	}
	if level != "" {
		class.Level = level
	}
	if section != "" {
		class.Section = section
	}
	if teacherID != nil {
		if _, err := s.scopeService.userService.GetByIDInTenant(tenantID, *teacherID); err != nil {
			return nil, err
		}
		class.TeacherID = teacherID
	}

	err = s.db.Save(class).Error
	return class, err
}

// Delete 删除班级（软删除），仍有在班学生时拒绝
func (s *ClassService) Delete(tenantID, id uint) error {
	class, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	var studentCount int64
	s.db.Model(&models.Student{}).Where("tenant_id = ? AND class_id = ?", tenantID, id).Count(&studentCount)
	if studentCount > 0 {
		return errors.NewValidation("班级下仍有学生，无法删除")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND class_id = ?", tenantID, id).
			Delete(&models.ClassSubject{}).Error; err != nil {
			return err
		}
		return tx.Delete(class).Error
	})
}

// GetForUser 按访问者身份获取班级：先按租户取数再校验任课范围，
// 不存在返回404，存在但不在任教范围内返回403
func (s *ClassService) GetForUser(user *models.User, id uint) (*models.Class, error) {
	class, err := s.GetByID(user.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopeService.RequireClassAccess(user, class.ID); err != nil {
		return nil, err
	}
	return class, nil
}

// GetStudents 班级学生名单
func (s *ClassService) GetStudents(tenantID, classID uint) ([]*models.Student, error) {
	if _, err := s.GetByID(tenantID, classID); err != nil {
		return nil, err
	}
	var students []*models.Student
	err := s.db.Where("tenant_id = ? AND class_id = ?", tenantID, classID).
		Order("last_name ASC, first_name ASC").Find(&students).Error
	return students, err
}

// GetStudentsForUser 班级学生名单（带任课范围校验）
func (s *ClassService) GetStudentsForUser(user *models.User, classID uint) ([]*models.Student, error) {
	if _, err := s.GetForUser(user, classID); err != nil {
		return nil, err
	}
	return s.GetStudents(user.TenantID, classID)
}
