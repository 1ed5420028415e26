package services

import (
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// scopedFixture 任课范围测试的固定场景：两个班级、两个科目、一名教师任教其中一对
type scopedFixture struct {
	db      *gorm.DB
	tenant  *models.Tenant
	admin   *models.User
	teacher *models.User
	classA  *models.Class
	classB  *models.Class
	math    *models.Subject
	english *models.Subject
}

func newScopedFixture(t *testing.T) *scopedFixture {
	t.Helper()
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Scoped School", "scoped-school")

	f := &scopedFixture{
		db:      db,
		tenant:  tenant,
		admin:   createUserWithRole(t, db, tenant.ID, "admin@scoped.edu", models.RoleAdmin),
		teacher: createUserWithRole(t, db, tenant.ID, "teacher@scoped.edu", models.RoleTeacher),
	}

	classService := NewClassService(db)
	var err error
	f.classA, err = classService.Create(tenant.ID, "Grade 9A", "Grade 9", "A", nil)
	require.NoError(t, err)
	f.classB, err = classService.Create(tenant.ID, "Grade 9B", "Grade 9", "B", nil)
	require.NoError(t, err)

	subjectService := NewSubjectService(db)
	f.math, err = subjectService.Create(tenant.ID, "Mathematics", "MATH")
	require.NoError(t, err)
	f.english, err = subjectService.Create(tenant.ID, "English", "ENG")
	require.NoError(t, err)

	// 教师只任教A班数学
	_, err = NewClassSubjectService(db).Assign(tenant.ID, f.classA.ID, f.math.ID, &f.teacher.ID)
	require.NoError(t, err)

	return f
}

func TestAssignRejectsDuplicate(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	// 同班级同科目只允许一条关联
	_, err := service.Assign(f.tenant.ID, f.classA.ID, f.math.ID, nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}

func TestAssignValidatesReferences(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	_, err := service.Assign(f.tenant.ID, 999, f.math.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = service.Assign(f.tenant.ID, f.classA.ID, 999, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	badTeacher := uint(999)
	_, err = service.Assign(f.tenant.ID, f.classB.ID, f.math.ID, &badTeacher)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAllowedClassFilter(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	// 管理员不加过滤
	_, unrestricted, err := service.AllowedClassFilter(f.admin, nil)
	require.NoError(t, err)
	assert.True(t, unrestricted)

	// 教师收敛到任课班级
	classIDs, unrestricted, err := service.AllowedClassFilter(f.teacher, nil)
	require.NoError(t, err)
	assert.False(t, unrestricted)
	assert.Equal(t, []uint{f.classA.ID}, classIDs)

	// 指定范围内班级放行
	classIDs, _, err = service.AllowedClassFilter(f.teacher, &f.classA.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.classA.ID}, classIDs)

	// 显式请求范围外班级直接403，不静默过滤
	_, _, err = service.AllowedClassFilter(f.teacher, &f.classB.ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)
}

func TestAllowedClassFilterNoAssignments(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	idle := createUserWithRole(t, f.db, f.tenant.ID, "idle@scoped.edu", models.RoleTeacher)

	classIDs, unrestricted, err := service.AllowedClassFilter(idle, nil)
	require.NoError(t, err)
	assert.False(t, unrestricted)
	assert.Empty(t, classIDs)
}

func TestRequireAssignment(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	// 精确任课记录放行
	require.NoError(t, service.RequireAssignment(f.teacher, f.classA.ID, f.math.ID))

	// 同班级不同科目拒绝
	err := service.RequireAssignment(f.teacher, f.classA.ID, f.english.ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	// 不同班级同科目拒绝
	err = service.RequireAssignment(f.teacher, f.classB.ID, f.math.ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	// 管理员无需任课记录
	require.NoError(t, service.RequireAssignment(f.admin, f.classB.ID, f.english.ID))
}

func TestUpdateTeacherUnassign(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	list, err := service.List(f.tenant.ID, &f.classA.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// 传nil取消指派，关联保留
	cs, err := service.UpdateTeacher(f.tenant.ID, list[0].ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cs.TeacherID)

	// 原教师的可见范围随之收回
	classIDs, _, err := service.AllowedClassFilter(f.teacher, nil)
	require.NoError(t, err)
	assert.Empty(t, classIDs)
}

func TestStudentListScopedByAssignment(t *testing.T) {
	f := newScopedFixture(t)
	studentService := NewStudentService(f.db)

	createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	createStudentInClass(t, f.db, f.tenant.ID, nil, "Carol") // 未分班

	// 管理员全量
	_, total, err := studentService.ListForUser(f.admin, nil, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// 教师只见任课班级学生
	students, total, err := studentService.ListForUser(f.teacher, nil, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, students, 1)
	assert.Equal(t, "Alice", students[0].FirstName)
}

func TestGetStudentForUserScoped(t *testing.T) {
	f := newScopedFixture(t)
	studentService := NewStudentService(f.db)

	inScope := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	outOfScope := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	unassigned := createStudentInClass(t, f.db, f.tenant.ID, nil, "Carol")

	_, err := studentService.GetForUser(f.teacher, inScope.ID)
	require.NoError(t, err)

	_, err = studentService.GetForUser(f.teacher, outOfScope.ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	// 未分班学生对教师不可见，对管理员可见
	_, err = studentService.GetForUser(f.teacher, unassigned.ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	_, err = studentService.GetForUser(f.admin, unassigned.ID)
	require.NoError(t, err)
}

func TestTeacherSubjectsAndClasses(t *testing.T) {
	f := newScopedFixture(t)
	service := NewClassSubjectService(f.db)

	// 再给教师加一门B班英语
	_, err := service.Assign(f.tenant.ID, f.classB.ID, f.english.ID, &f.teacher.ID)
	require.NoError(t, err)

	classIDs, err := service.GetTeacherClassIDs(f.tenant.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Len(t, classIDs, 2)

	subjects, err := NewSubjectService(f.db).ListByTeacher(f.tenant.ID, f.teacher.ID, nil)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	// 按班级收敛："我在B班教什么"只剩英语
	narrowed, err := NewSubjectService(f.db).ListByTeacher(f.tenant.ID, f.teacher.ID, &f.classB.ID)
	require.NoError(t, err)
	require.Len(t, narrowed, 1)
	assert.Equal(t, f.english.ID, narrowed[0].ID)

	subjectIDs, err := service.GetTeacherSubjectIDs(f.tenant.ID, f.teacher.ID, &f.classA.ID)
	require.NoError(t, err)
	require.Len(t, subjectIDs, 1)
	assert.Equal(t, f.math.ID, subjectIDs[0])
}

func TestClassGetForUserScoped(t *testing.T) {
	f := newScopedFixture(t)
	classService := NewClassService(f.db)

	got, err := classService.GetForUser(f.teacher, f.classA.ID)
	require.NoError(t, err)
	assert.Equal(t, f.classA.ID, got.ID)

	// 班级存在但不在任教范围内：403而不是404
	_, err = classService.GetForUser(f.teacher, f.classB.ID)
	assertAppErrorCode(t, err, 403)

	// 班级不存在：404语义
	_, err = classService.GetForUser(f.teacher, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = classService.GetForUser(f.admin, f.classB.ID)
	require.NoError(t, err)
}

func TestClassStudentsForUserScoped(t *testing.T) {
	f := newScopedFixture(t)
	classService := NewClassService(f.db)
	createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")

	// 教师拿不到非任教班级的学生名单
	_, err := classService.GetStudentsForUser(f.teacher, f.classB.ID)
	assertAppErrorCode(t, err, 403)

	students, err := classService.GetStudentsForUser(f.admin, f.classB.ID)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
