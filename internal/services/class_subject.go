package services

import (
	"smp/internal/models"
	"smp/pkg/errors"

	"gorm.io/gorm"
)

// ClassSubjectService 班级-科目-任课教师关联，教师数据范围的唯一事实来源
type ClassSubjectService struct {
	db          *gorm.DB
	userService *UserService
}

func NewClassSubjectService(db *gorm.DB) *ClassSubjectService {
	return &ClassSubjectService{
		db:          db,
		userService: NewUserService(db),
	}
}

// Assign 建立任课关联，同一班级+科目最多一条有效记录
func (s *ClassSubjectService) Assign(tenantID, classID, subjectID uint, teacherID *uint) (*models.ClassSubject, error) {
	var class models.Class
	if err := s.db.Where("tenant_id = ?", tenantID).First(&class, classID).Error; err != nil {
		return nil, err
	}
	var subject models.Subject
	if err := s.db.Where("tenant_id = ?", tenantID).First(&subject, subjectID).Error; err != nil {
		return nil, err
	}
	if teacherID != nil {
		if _, err := s.userService.GetByIDInTenant(tenantID, *teacherID); err != nil {
			return nil, err
		}
	}

	var count int64
	s.db.Model(&models.ClassSubject{}).
		Where("tenant_id = ? AND class_id = ? AND subject_id = ?", tenantID, classID, subjectID).
		Count(&count)
	if count > 0 {
		return nil, errors.NewValidation("该班级已关联此科目")
	}

	cs := &models.ClassSubject{
		TenantID:  tenantID,
		ClassID:   classID,
		SubjectID: subjectID,
		TeacherID: teacherID,
	}
	if err := s.db.Create(cs).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewValidation("该班级已关联此科目")
		}
		return nil, err
	}

	s.db.Preload("Class").Preload("Subject").Preload("Teacher").First(cs, cs.ID)
	return cs, nil
}

// GetByID 根据ID获取关联
func (s *ClassSubjectService) GetByID(tenantID, id uint) (*models.ClassSubject, error) {
	var cs models.ClassSubject
	err := s.db.Preload("Class").Preload("Subject").Preload("Teacher").
		Where("tenant_id = ?", tenantID).First(&cs, id).Error
	return &cs, err
}

// List 按条件查询关联列表
func (s *ClassSubjectService) List(tenantID uint, classID, subjectID, teacherID *uint) ([]*models.ClassSubject, error) {
	var list []*models.ClassSubject
	query := s.db.Preload("Class").Preload("Subject").Preload("Teacher").
		Where("tenant_id = ?", tenantID)
	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	}
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}
	if teacherID != nil {
		query = query.Where("teacher_id = ?", *teacherID)
	}
	err := query.Order("class_id ASC, subject_id ASC").Find(&list).Error
	return list, err
}

// UpdateTeacher 换任课教师，传nil即取消指派
func (s *ClassSubjectService) UpdateTeacher(tenantID, id uint, teacherID *uint) (*models.ClassSubject, error) {
	cs, err := s.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if teacherID != nil {
		if _, err := s.userService.GetByIDInTenant(tenantID, *teacherID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&models.ClassSubject{}).Where("id = ?", cs.ID).
		Update("teacher_id", teacherID).Error; err != nil {
		return nil, err
	}
	return s.GetByID(tenantID, id)
}

// Remove 解除关联
func (s *ClassSubjectService) Remove(tenantID, id uint) error {
	cs, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(cs).Error
}

// ========== 教师数据范围 ==========

// GetTeacherClassIDs 教师任课覆盖的班级ID集合（去重）
func (s *ClassSubjectService) GetTeacherClassIDs(tenantID, teacherID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.ClassSubject{}).
		Where("tenant_id = ? AND teacher_id = ?", tenantID, teacherID).
		Distinct("class_id").Pluck("class_id", &ids).Error
	return ids, err
}

// GetTeacherSubjectIDs 教师任课覆盖的科目ID集合（去重），可选按班级收敛
func (s *ClassSubjectService) GetTeacherSubjectIDs(tenantID, teacherID uint, classID *uint) ([]uint, error) {
	query := s.db.Model(&models.ClassSubject{}).
		Where("tenant_id = ? AND teacher_id = ?", tenantID, teacherID)
	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	}
	var ids []uint
	err := query.Distinct("subject_id").Pluck("subject_id", &ids).Error
	return ids, err
}

// HasAssignment 检查教师是否持有某个班级+科目的任课记录
func (s *ClassSubjectService) HasAssignment(tenantID, teacherID, classID, subjectID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.ClassSubject{}).
		Where("tenant_id = ? AND teacher_id = ? AND class_id = ? AND subject_id = ?",
			tenantID, teacherID, classID, subjectID).
		Count(&count).Error
	return count > 0, err
}

// RequireClassAccess 校验用户对班级的访问权：管理员直通，教师要求任教该班级
func (s *ClassSubjectService) RequireClassAccess(user *models.User, classID uint) error {
	isAdmin, err := s.userService.IsAdmin(user)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	classIDs, err := s.GetTeacherClassIDs(user.TenantID, user.ID)
	if err != nil {
		return err
	}
	for _, id := range classIDs {
		if id == classID {
			return nil
		}
	}
	return errors.NewForbidden("您未任教该班级", nil, user.RoleNames())
}

// RequireAssignment 校验用户对班级+科目组合的访问权：管理员直通，教师要求精确任课记录
// 仅任教同班其他科目不放行
func (s *ClassSubjectService) RequireAssignment(user *models.User, classID, subjectID uint) error {
	isAdmin, err := s.userService.IsAdmin(user)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	ok, err := s.HasAssignment(user.TenantID, user.ID, classID, subjectID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewForbidden("您未任教该班级的此科目", nil, user.RoleNames())
	}
	return nil
}

// AllowedClassFilter 列表查询的班级可见范围
// 管理员返回(nil, true)表示不加过滤；教师返回任课班级ID集合；
// 教师请求了范围外的指定班级时直接返回Forbidden，避免静默吞掉请求语义
func (s *ClassSubjectService) AllowedClassFilter(user *models.User, requestedClassID *uint) ([]uint, bool, error) {
	isAdmin, err := s.userService.IsAdmin(user)
	if err != nil {
		return nil, false, err
	}
	if isAdmin {
		if requestedClassID != nil {
			return []uint{*requestedClassID}, false, nil
		}
		return nil, true, nil
	}

	classIDs, err := s.GetTeacherClassIDs(user.TenantID, user.ID)
	if err != nil {
		return nil, false, err
	}

	if requestedClassID != nil {
		for _, id := range classIDs {
			if id == *requestedClassID {
				return []uint{*requestedClassID}, false, nil
			}
		}
		return nil, false, errors.NewForbidden("您未任教该班级", nil, user.RoleNames())
	}
	return classIDs, false, nil
}
