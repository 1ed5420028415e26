package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"smp/internal/middleware"
	"smp/internal/models"
	"smp/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// scopeFixture 处理器层任课范围场景：教师只任教A班数学
type scopeFixture struct {
	db       *gorm.DB
	tenant   *models.Tenant
	admin    *models.User
	teacher  *models.User
	classA   *models.Class
	classB   *models.Class
	math     *models.Subject
	studentB *models.Student
}

func newScopeFixture(t *testing.T) *scopeFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
		&models.Grade{},
		&models.GradeType{},
		&models.GradingScale{},
		&models.Term{},
	))

	f := &scopeFixture{db: db}
	f.tenant = &models.Tenant{ProviderID: 1, Name: "Handler School", Slug: "handler-school", Status: models.TenantStatusActive}
	require.NoError(t, db.Create(f.tenant).Error)

	roleService := services.NewRoleService(db)
	require.NoError(t, roleService.CreateDefaultRoles(db, f.tenant.ID))
	adminRole, err := roleService.GetByName(f.tenant.ID, models.RoleAdmin)
	require.NoError(t, err)
	teacherRole, err := roleService.GetByName(f.tenant.ID, models.RoleTeacher)
	require.NoError(t, err)

	userService := services.NewUserService(db)
	f.admin, err = userService.Create(f.tenant.ID, "Head", "Admin", "head@handler.edu", "secret123", nil, []uint{adminRole.ID})
	require.NoError(t, err)
	f.teacher, err = userService.Create(f.tenant.ID, "Math", "Teacher", "math@handler.edu", "secret123", nil, []uint{teacherRole.ID})
	require.NoError(t, err)

	classService := services.NewClassService(db)
	f.classA, err = classService.Create(f.tenant.ID, "Grade 7A", "Grade 7", "A", nil)
	require.NoError(t, err)
	f.classB, err = classService.Create(f.tenant.ID, "Grade 7B", "Grade 7", "B", nil)
	require.NoError(t, err)

	f.math, err = services.NewSubjectService(db).Create(f.tenant.ID, "Mathematics", "MATH")
	require.NoError(t, err)
	_, err = services.NewClassSubjectService(db).Assign(f.tenant.ID, f.classA.ID, f.math.ID, &f.teacher.ID)
	require.NoError(t, err)

	f.studentB = &models.Student{TenantID: f.tenant.ID, FirstName: "Bella", LastName: "Ng", ClassID: &f.classB.ID, IsActive: true}
	require.NoError(t, db.Create(f.studentB).Error)
	return f
}

// ctxAs 构造带登录上下文与路径参数的测试请求
func (f *scopeFixture) ctxAs(user *models.User, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Params = params
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyUserID, user.ID)
	c.Set(middleware.ContextKeyTenantID, user.TenantID)
	return c, recorder
}

func TestClassStudentsForbiddenOutsideAssignments(t *testing.T) {
	f := newScopeFixture(t)
	handler := NewClassHandler(services.NewClassService(f.db))

	// 教师访问非任教班级的名单：403
	c, recorder := f.ctxAs(f.teacher, gin.Param{Key: "id", Value: fmt.Sprint(f.classB.ID)})
	handler.Students(c)
	assert.Equal(t, 403, recorder.Code)

	// 任教班级正常返回
	c, recorder = f.ctxAs(f.teacher, gin.Param{Key: "id", Value: fmt.Sprint(f.classA.ID)})
	handler.Students(c)
	assert.Equal(t, 200, recorder.Code)

	// 管理员不受限
	c, recorder = f.ctxAs(f.admin, gin.Param{Key: "id", Value: fmt.Sprint(f.classB.ID)})
	handler.Students(c)
	assert.Equal(t, 200, recorder.Code)
}

func TestClassGetForbiddenOutsideAssignments(t *testing.T) {
	f := newScopeFixture(t)
	handler := NewClassHandler(services.NewClassService(f.db))

	c, recorder := f.ctxAs(f.teacher, gin.Param{Key: "id", Value: fmt.Sprint(f.classB.ID)})
	handler.Get(c)
	assert.Equal(t, 403, recorder.Code)

	// 不存在的班级仍是404，与403可区分
	c, recorder = f.ctxAs(f.teacher, gin.Param{Key: "id", Value: "9999"})
	handler.Get(c)
	assert.Equal(t, 404, recorder.Code)
}

func TestStudentReportsForbiddenOutsideAssignments(t *testing.T) {
	f := newScopeFixture(t)
	handler := NewReportHandler(
		services.NewGradeCalcService(f.db),
		services.NewClassSubjectService(f.db),
		services.NewUserService(f.db),
		services.NewStudentService(f.db),
	)

	// 教师拉取非任教班级学生的总览：403
	c, recorder := f.ctxAs(f.teacher, gin.Param{Key: "studentId", Value: fmt.Sprint(f.studentB.ID)})
	handler.StudentSummary(c)
	assert.Equal(t, 403, recorder.Code)

	// 单科平均同样受限
	c, recorder = f.ctxAs(f.teacher,
		gin.Param{Key: "studentId", Value: fmt.Sprint(f.studentB.ID)},
		gin.Param{Key: "subjectId", Value: fmt.Sprint(f.math.ID)})
	handler.StudentSubjectAverage(c)
	assert.Equal(t, 403, recorder.Code)

	// 管理员不受限
	c, recorder = f.ctxAs(f.admin, gin.Param{Key: "studentId", Value: fmt.Sprint(f.studentB.ID)})
	handler.StudentSummary(c)
	assert.Equal(t, 200, recorder.Code)
}
