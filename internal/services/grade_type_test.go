package services

import (
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultGradeTypes(t *testing.T) {
	db := setupTestDB(t)
	service := NewGradeTypeService(db)

	types, err := service.ListOrSeed(1)
	require.NoError(t, err)
	require.Len(t, types, 5)

	// 默认权重合计1.0
	total := 0.0
	byName := make(map[string]*models.GradeType)
	for _, gt := range types {
		require.NotNil(t, gt.Weight, "默认类型 %s 应带权重", gt.Name)
		total += *gt.Weight
		byName[gt.Name] = gt
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.30, *byName["Exam"].Weight)
	assert.Equal(t, 0.10, *byName["Homework"].Weight)

	// 再次访问不重复种子
	again, err := service.ListOrSeed(1)
	require.NoError(t, err)
	assert.Len(t, again, 5)
}

func TestGradeTypeWeightBounds(t *testing.T) {
	db := setupTestDB(t)
	service := NewGradeTypeService(db)

	bad := 1.5
	_, err := service.Create(1, "Overweight", &bad, 100)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	negative := -0.1
	_, err = service.Create(1, "Negative", &negative, 100)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	ok := 0.5
	created, err := service.Create(1, "Midterm", &ok, 100)
	require.NoError(t, err)

	_, err = service.Update(1, created.ID, "", &bad, nil, nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}

func TestGradeTypeDeleteRefusesWhenReferenced(t *testing.T) {
	db := setupTestDB(t)
	service := NewGradeTypeService(db)

	types, err := service.ListOrSeed(1)
	require.NoError(t, err)
	examID := types[0].ID

	grade := &models.Grade{
		TenantID: 1, StudentID: 1, ClassID: 1, SubjectID: 1, TeacherID: 1,
		GradeTypeID: examID, Score: 80, MaxScore: 100,
	}
	require.NoError(t, db.Create(grade).Error)

	err = service.Delete(1, examID)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}
