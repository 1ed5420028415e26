package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBehaviorCreateAndBalance(t *testing.T) {
	f := newScopedFixture(t)
	service := NewBehaviorService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")

	_, err := service.Create(f.teacher, alice.ID, BehaviorTypeMerit, 10, "帮助同学")
	require.NoError(t, err)
	_, err = service.Create(f.teacher, alice.ID, BehaviorTypeDemerit, 3, "迟交作业")
	require.NoError(t, err)
	_, err = service.Create(f.teacher, alice.ID, BehaviorTypeIncident, 5, "纪律事件") // incident不计分
	require.NoError(t, err)

	balance, err := service.PointsBalance(f.tenant.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, balance) // 10 - 3

	_, total, err := service.ListByStudent(f.tenant.ID, alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestBehaviorCreateValidation(t *testing.T) {
	f := newScopedFixture(t)
	service := NewBehaviorService(f.db)

	alice := createStudentInClass(t, f.db, f.tenant.ID, &f.classA.ID, "Alice")
	bob := createStudentInClass(t, f.db, f.tenant.ID, &f.classB.ID, "Bob")

	_, err := service.Create(f.teacher, alice.ID, "praise", 5, "描述")
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	_, err = service.Create(f.teacher, alice.ID, BehaviorTypeMerit, 5, "  ")
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 教师不可给范围外班级的学生记分，管理员不受限
	_, err = service.Create(f.teacher, bob.ID, BehaviorTypeMerit, 5, "描述")
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)

	_, err = service.Create(f.admin, bob.ID, BehaviorTypeMerit, 5, "描述")
	require.NoError(t, err)
}
