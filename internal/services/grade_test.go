package services

import (
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeCreate(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	student := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	grade, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID:   student.ID,
		ClassID:     f.classA.ID,
		SubjectID:   f.math.ID,
		GradeTypeID: examID,
		Score:       45,
		MaxScore:    50,
	})
	require.NoError(t, err)

	// 百分比入库前派生，等级按租户等级表补齐
	assert.Equal(t, 90.0, grade.Percentage)
	assert.Equal(t, f.teacher.ID, grade.TeacherID)
	require.NotNil(t, grade.LetterGrade)
	assert.Equal(t, "A-", *grade.LetterGrade)
	assert.False(t, grade.IsPublished) // 默认未发布
}

func TestGradeCreateRequiresAssignment(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	student := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	// 教师未任教B班
	_, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID:   student.ID,
		ClassID:     f.classB.ID,
		SubjectID:   f.math.ID,
		GradeTypeID: examID,
		Score:       80,
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	// 管理员无需任课记录
	_, err = gradeService.Create(f.admin, &GradeInput{
		StudentID:   student.ID,
		ClassID:     f.classB.ID,
		SubjectID:   f.math.ID,
		GradeTypeID: examID,
		Score:       80,
	})
	require.NoError(t, err)
}

func TestGradeCreateValidation(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	inClass := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	elsewhere := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	// 分数越界
	_, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID: inClass.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 120, MaxScore: 100,
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 学生不属于该班级
	_, err = gradeService.Create(f.teacher, &GradeInput{
		StudentID: elsewhere.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 80,
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 满分缺省为100
	grade, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID: inClass.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, grade.MaxScore)
	assert.Equal(t, 80.0, grade.Percentage)
}

func TestGradeUpdateRecomputes(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	student := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	grade, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID: student.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 80,
	})
	require.NoError(t, err)

	newScore := 59.99
	updated, err := gradeService.Update(f.teacher, grade.ID, &newScore, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 59.99, updated.Percentage)
	require.NotNil(t, updated.LetterGrade)
	assert.Equal(t, "F", *updated.LetterGrade)
}

func TestGradePublishFlow(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	dave := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Dave")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	for _, studentID := range []uint{alice.ID, dave.ID} {
		_, err := gradeService.Create(f.teacher, &GradeInput{
			StudentID: studentID, ClassID: f.classA.ID, SubjectID: f.math.ID,
			GradeTypeID: examID, Score: 85,
		})
		require.NoError(t, err)
	}

	// 批量发布整个班级科目
	affected, err := gradeService.PublishBatch(f.teacher, f.classA.ID, f.math.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// 再次发布无行可改
	affected, err = gradeService.PublishBatch(f.teacher, f.classA.ID, f.math.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	// 教师范围外的批量发布拒绝
	_, err = gradeService.PublishBatch(f.teacher, f.classB.ID, f.math.ID, nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)
}

func TestGradeListScoped(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	bob := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	_, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID: alice.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 85,
	})
	require.NoError(t, err)
	_, err = gradeService.Create(f.admin, &GradeInput{
		StudentID: bob.ID, ClassID: f.classB.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 70,
	})
	require.NoError(t, err)

	// 管理员全量，教师只见任课班级
	_, total, err := gradeService.ListForUser(f.admin, &GradeFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	grades, total, err := gradeService.ListForUser(f.teacher, &GradeFilter{}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, grades, 1)
	assert.Equal(t, f.classA.ID, grades[0].ClassID)

	// 范围外成绩详情同样拒绝
	all, _, err := gradeService.ListForUser(f.admin, &GradeFilter{ClassID: &f.classB.ID}, 1, 20)
	require.NoError(t, err)
	require.Len(t, all, 1)
	_, err = gradeService.GetForUser(f.teacher, all[0].ID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)
}

func TestGradeTenantIsolation(t *testing.T) {
	f := newScopedFixture(t)
	gradeService := NewGradeService(f.db)

	other := seedTenant(t, f.db, "Other School", "other-school")
	otherAdmin := createUserWithRole(t, f.db, other.ID, "admin@other.edu", models.RoleAdmin)

	student := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	examID := gradeTypeIDByName(t, f.db, f.tenant.ID, "Exam")

	grade, err := gradeService.Create(f.teacher, &GradeInput{
		StudentID: student.ID, ClassID: f.classA.ID, SubjectID: f.math.ID,
		GradeTypeID: examID, Score: 85,
	})
	require.NoError(t, err)

	// 其他租户管理员按不存在处理
	_, err = gradeService.GetForUser(otherAdmin, grade.ID)
	require.Error(t, err)
	assert.NotNil(t, err)
}
