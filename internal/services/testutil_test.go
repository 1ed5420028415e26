package services

import (
	"testing"

	"smp/internal/models"
	"smp/pkg/errors"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 内存sqlite库，每个测试独立一份
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// 内存库随连接销毁，连接池必须收敛为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Provider{},
		&models.ProviderUser{},
		&models.Tenant{},
		&models.User{},
		&models.Role{},
		&models.UserRole{},
		&models.Student{},
		&models.Class{},
		&models.Subject{},
		&models.ClassSubject{},
		&models.Enrollment{},
		&models.Grade{},
		&models.GradeType{},
		&models.GradingScale{},
		&models.Term{},
		&models.Attendance{},
		&models.Fee{},
		&models.Payment{},
		&models.BehaviorRecord{},
		&models.Notification{},
		&models.TermReport{},
		&models.Asset{},
		&models.AIReportRequest{},
		&models.AuditLog{},
	))

	return db
}

// seedTenant 创建租户并种子四个默认角色
func seedTenant(t *testing.T, db *gorm.DB, name, slug string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		ProviderID: 1,
		Name:       name,
		Slug:       slug,
		Status:     models.TenantStatusActive,
	}
	require.NoError(t, db.Create(tenant).Error)
	require.NoError(t, NewRoleService(db).CreateDefaultRoles(db, tenant.ID))
	return tenant
}

// createUserWithRole 创建持有指定默认角色的租户用户
func createUserWithRole(t *testing.T, db *gorm.DB, tenantID uint, email, roleName string) *models.User {
	t.Helper()

	role, err := NewRoleService(db).GetByName(tenantID, roleName)
	require.NoError(t, err)

	user, err := NewUserService(db).Create(tenantID, "Test", roleName, email, "secret123", nil, []uint{role.ID})
	require.NoError(t, err)
	return user
}

// assertAppErrorCode 断言错误为指定状态码的业务错误
func assertAppErrorCode(t *testing.T, err error, code int) {
	t.Helper()

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok, "期望*errors.AppError，实际 %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

// createStudentInClass 创建隶属于某班级的学生
func createStudentInClass(t *testing.T, db *gorm.DB, tenantID uint, classID *uint, firstName string) *models.Student {
	t.Helper()

	student := &models.Student{
		TenantID:  tenantID,
		FirstName: firstName,
		LastName:  "Student",
		ClassID:   classID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}
