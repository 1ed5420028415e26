package services

import (
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNotificationTargetedAndBroadcast(t *testing.T) {
	f := newScopedFixture(t)
	service := NewNotificationService(f.db, nil)

	other := createUserWithRole(t, f.db, f.tenant.ID, "other@scoped.edu", models.RoleTeacher)

	// 定向通知 + 租户广播
	_, err := service.Create(f.tenant.ID, &f.teacher.ID, "家长会", "周五下午", "general")
	require.NoError(t, err)
	_, err = service.Create(f.tenant.ID, nil, "放假通知", "下周一放假", "general")
	require.NoError(t, err)

	// 本人可见：定向 + 广播
	_, total, err := service.ListForUser(f.tenant.ID, f.teacher.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 其他用户只见广播
	_, total, err = service.ListForUser(f.tenant.ID, other.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestNotificationMarkRead(t *testing.T) {
	f := newScopedFixture(t)
	service := NewNotificationService(f.db, nil)

	created, err := service.Create(f.tenant.ID, &f.teacher.ID, "标题", "正文", "general")
	require.NoError(t, err)

	count, err := service.UnreadCount(f.tenant.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 他人不可标记别人的定向通知
	_, err = service.MarkRead(f.tenant.ID, f.admin.ID, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	marked, err := service.MarkRead(f.tenant.ID, f.teacher.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, marked.IsRead)

	count, err = service.UnreadCount(f.tenant.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationMarkAllRead(t *testing.T) {
	f := newScopedFixture(t)
	service := NewNotificationService(f.db, nil)

	_, err := service.Create(f.tenant.ID, &f.teacher.ID, "一", "", "general")
	require.NoError(t, err)
	_, err = service.Create(f.tenant.ID, nil, "二", "", "general")
	require.NoError(t, err)

	affected, err := service.MarkAllRead(f.tenant.ID, f.teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestNotificationValidation(t *testing.T) {
	f := newScopedFixture(t)
	service := NewNotificationService(f.db, nil)

	_, err := service.Create(f.tenant.ID, nil, "  ", "正文", "general")
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 定向用户必须存在于租户内
	missing := uint(999)
	_, err = service.Create(f.tenant.ID, &missing, "标题", "", "general")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
