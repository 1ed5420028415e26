package services

import (
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderBootstrap(t *testing.T) {
	db := setupTestDB(t)
	service := NewProviderService(db)

	user, err := service.Bootstrap("My Platform", "Root", "Admin", "root@platform.io", "secret123")
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.Equal(t, models.AllProviderPermissions(), []string(user.Permissions))

	provider, err := service.GetDefaultProvider()
	require.NoError(t, err)
	assert.Equal(t, "My Platform", provider.Name)
	assert.Equal(t, provider.ID, user.ProviderID)

	// 已有操作员后引导接口关闭
	_, err = service.Bootstrap("My Platform", "Root2", "Admin2", "root2@platform.io", "secret123")
	require.Error(t, err)
	assertAppErrorCode(t, err, 403)
}

func TestProviderAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	service := NewProviderService(db)

	created, err := service.Bootstrap("Platform", "Root", "Admin", "root@platform.io", "secret123")
	require.NoError(t, err)

	user, err := service.Authenticate("Root@Platform.io", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// 密码错误与账号不存在给出同一错误口径
	_, err = service.Authenticate("root@platform.io", "wrong")
	require.Error(t, err)
	assertAppErrorCode(t, err, 401)
	wrongPassMsg := err.Error()

	_, err = service.Authenticate("nobody@platform.io", "secret123")
	require.Error(t, err)
	assertAppErrorCode(t, err, 401)
	assert.Equal(t, wrongPassMsg, err.Error())

	// 密码不对时不暴露账号停用状态
	require.NoError(t, db.Model(created).Update("is_active", false).Error)
	_, err = service.Authenticate("root@platform.io", "wrong")
	require.Error(t, err)
	assert.Equal(t, wrongPassMsg, err.Error())
}

func TestProviderAuthenticateInactive(t *testing.T) {
	db := setupTestDB(t)
	service := NewProviderService(db)

	user, err := service.Bootstrap("Platform", "Root", "Admin", "root@platform.io", "secret123")
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err = service.Authenticate("root@platform.io", "secret123")
	require.Error(t, err)
	assertAppErrorCode(t, err, 401)
}

func TestProviderCreateUserValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewProviderService(db)

	_, err := service.Bootstrap("Platform", "Root", "Admin", "root@platform.io", "secret123")
	require.NoError(t, err)
	provider, err := service.GetDefaultProvider()
	require.NoError(t, err)

	// 运营方用户邮箱同样全局唯一
	_, err = service.CreateUser(provider.ID, "Dup", "User", "root@platform.io", "secret123", nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	_, err = service.CreateUser(provider.ID, "", "User", "new@platform.io", "secret123", nil)
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	ops, err := service.CreateUser(provider.ID, "Ops", "User", "ops@platform.io", "secret123",
		[]string{models.ProviderPermTenantRead})
	require.NoError(t, err)
	assert.Equal(t, []string{models.ProviderPermTenantRead}, []string(ops.Permissions))
}
