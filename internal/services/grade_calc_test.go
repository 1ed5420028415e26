package services

import (
	"testing"
	"time"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// gradeTypeIDByName 从默认种子集中取类型ID
func gradeTypeIDByName(t *testing.T, db *gorm.DB, tenantID uint, name string) uint {
	t.Helper()
	types, err := NewGradeTypeService(db).ListOrSeed(tenantID)
	require.NoError(t, err)
	for _, gt := range types {
		if gt.Name == name {
			return gt.ID
		}
	}
	t.Fatalf("成绩类型 %s 未种子", name)
	return 0
}

func insertGrade(t *testing.T, db *gorm.DB, tenantID, studentID, classID, subjectID, typeID uint, score float64, published bool) *models.Grade {
	t.Helper()
	grade := &models.Grade{
		TenantID:    tenantID,
		StudentID:   studentID,
		ClassID:     classID,
		SubjectID:   subjectID,
		TeacherID:   1,
		GradeTypeID: typeID,
		Score:       score,
		MaxScore:    100,
		IsPublished: published,
	}
	require.NoError(t, db.Create(grade).Error)
	return grade
}

func TestStudentSubjectAverageWeighted(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	homeworkID := gradeTypeIDByName(t, db, tenant.ID, "Homework") // 权重0.10
	examID := gradeTypeIDByName(t, db, tenant.ID, "Exam")         // 权重0.30

	// Homework均值80，Exam均值90 -> (80*0.1 + 90*0.3) / 0.4 = 87.5
	insertGrade(t, db, tenant.ID, 1, 1, 1, homeworkID, 75, true)
	insertGrade(t, db, tenant.ID, 1, 1, 1, homeworkID, 85, true)
	insertGrade(t, db, tenant.ID, 1, 1, 1, examID, 90, true)

	result, err := calc.StudentSubjectAverage(tenant.ID, 1, 1, nil, true)
	require.NoError(t, err)

	assert.Equal(t, 3, result.GradeCount)
	assert.True(t, result.Weighted)
	assert.Equal(t, 87.5, result.WeightedAverage)
	assert.Equal(t, "B+", result.Letter)
	assert.Equal(t, 3.3, result.GPA)
	assert.Len(t, result.Breakdown, 2)
}

func TestStudentSubjectAverageFallbackUnweighted(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	// 两个无权重类型：退化为全部成绩的算术平均
	typeService := NewGradeTypeService(db)
	project, err := typeService.Create(tenant.ID, "Project", nil, 100)
	require.NoError(t, err)
	oral, err := typeService.Create(tenant.ID, "Oral", nil, 100)
	require.NoError(t, err)

	insertGrade(t, db, tenant.ID, 1, 1, 1, project.ID, 70, true)
	insertGrade(t, db, tenant.ID, 1, 1, 1, oral.ID, 90, true)

	result, err := calc.StudentSubjectAverage(tenant.ID, 1, 1, nil, true)
	require.NoError(t, err)

	assert.False(t, result.Weighted)
	assert.Equal(t, 80.0, result.WeightedAverage)
	assert.Equal(t, "B-", result.Letter)
}

func TestStudentSubjectAverageIgnoresNilWeightWhenMixed(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	homeworkID := gradeTypeIDByName(t, db, tenant.ID, "Homework")
	project, err := NewGradeTypeService(db).Create(tenant.ID, "Project", nil, 100)
	require.NoError(t, err)

	// 无权重类型出现在摘要中但不参与加权
	insertGrade(t, db, tenant.ID, 1, 1, 1, homeworkID, 80, true)
	insertGrade(t, db, tenant.ID, 1, 1, 1, project.ID, 100, true)

	result, err := calc.StudentSubjectAverage(tenant.ID, 1, 1, nil, true)
	require.NoError(t, err)

	assert.True(t, result.Weighted)
	assert.Equal(t, 80.0, result.WeightedAverage)
	assert.Len(t, result.Breakdown, 2)
}

func TestStudentSubjectAveragePublishedOnly(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	examID := gradeTypeIDByName(t, db, tenant.ID, "Exam")
	insertGrade(t, db, tenant.ID, 1, 1, 1, examID, 90, true)
	insertGrade(t, db, tenant.ID, 1, 1, 1, examID, 50, false) // 未发布

	published, err := calc.StudentSubjectAverage(tenant.ID, 1, 1, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, published.GradeCount)
	assert.Equal(t, 90.0, published.WeightedAverage)

	full, err := calc.StudentSubjectAverage(tenant.ID, 1, 1, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, full.GradeCount)
	assert.Equal(t, 70.0, full.WeightedAverage)
}

func TestStudentSubjectAverageEmpty(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	result, err := calc.StudentSubjectAverage(tenant.ID, 99, 99, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.GradeCount)
	assert.Equal(t, 0.0, result.WeightedAverage)
	assert.Empty(t, result.Breakdown)
}

func TestStudentSummaryReport(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	examID := gradeTypeIDByName(t, db, tenant.ID, "Exam")

	// 两个科目各一条Exam成绩：90与80，总平均85
	insertGrade(t, db, tenant.ID, 1, 1, 10, examID, 90, true)
	insertGrade(t, db, tenant.ID, 1, 1, 20, examID, 80, true)

	summary, err := calc.StudentSummaryReport(tenant.ID, 1, nil, true)
	require.NoError(t, err)

	assert.Len(t, summary.Subjects, 2)
	assert.Equal(t, 85.0, summary.OverallAverage)
	assert.Equal(t, "B", summary.OverallLetter)
	assert.Equal(t, 3.2, summary.OverallGPA) // (3.7 + 2.7) / 2
	assert.Equal(t, 1, summary.Distribution["A-"])
	assert.Equal(t, 1, summary.Distribution["B-"])
	assert.Equal(t, TrendStable, summary.Trend) // 成绩不足三条
}

func TestClassSubjectAverage(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db, "Test School", "test-school")
	calc := NewGradeCalcService(db)

	// 学生1两条成绩（均值60），学生2一条成绩，
	// 班级平均按学生均值等权：(60+90)/2=75，条数多的学生不加权
	examID := gradeTypeIDByName(t, db, tenant.ID, "Exam")
	insertGrade(t, db, tenant.ID, 1, 5, 7, examID, 50, true)
	insertGrade(t, db, tenant.ID, 1, 5, 7, examID, 70, true)
	insertGrade(t, db, tenant.ID, 2, 5, 7, examID, 90, false) // 管理口径：未发布也计入

	stats, err := calc.ClassSubjectAverage(tenant.ID, 5, 7, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.StudentCount)
	assert.Equal(t, 3, stats.GradeCount)
	assert.Equal(t, 75.0, stats.Average)
	assert.Equal(t, 90.0, stats.Highest)
	assert.Equal(t, 60.0, stats.Lowest)

	// 分布按学生均值计数：60→D-，90→A-
	assert.Equal(t, map[string]int{"D-": 1, "A-": 1}, stats.Distribution)
}

func TestCalculateTrend(t *testing.T) {
	mk := func(percentages ...float64) []*models.Grade {
		grades := make([]*models.Grade, 0, len(percentages))
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i, p := range percentages {
			grades = append(grades, &models.Grade{
				BaseModel:  models.BaseModel{CreatedAt: base.Add(time.Duration(i) * time.Hour)},
				Percentage: p,
			})
		}
		return grades
	}

	tests := []struct {
		name   string
		grades []*models.Grade
		want   string
	}{
		{"成绩不足三条视为平稳", mk(60, 90), TrendStable},
		{"无成绩视为平稳", mk(), TrendStable},
		{"后半段提升超过5分", mk(60, 60, 80, 80), TrendImproving},
		{"后半段下滑超过5分", mk(90, 90, 70, 70), TrendDeclining},
		{"恰好提升5分仍为平稳", mk(70, 70, 75, 75), TrendStable},
		{"小幅波动", mk(80, 80, 81), TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateTrend(tt.grades))
		})
	}
}

func TestCalculateTrendOrdersByCreatedAt(t *testing.T) {
	// 乱序传入也按时间排序后切分
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	grades := []*models.Grade{
		{BaseModel: models.BaseModel{CreatedAt: base.Add(3 * time.Hour)}, Percentage: 90},
		{BaseModel: models.BaseModel{CreatedAt: base}, Percentage: 60},
		{BaseModel: models.BaseModel{CreatedAt: base.Add(2 * time.Hour)}, Percentage: 90},
		{BaseModel: models.BaseModel{CreatedAt: base.Add(1 * time.Hour)}, Percentage: 60},
	}
	assert.Equal(t, TrendImproving, CalculateTrend(grades))
}
