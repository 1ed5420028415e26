package services

import (
	"strings"
	"testing"

	"smp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProvisionWithAdmin(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	result, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Green Valley High",
		AdminFirstName: "Jane",
		AdminLastName:  "Doe",
		AdminEmail:     "jane@greenvalley.edu",
		AdminPassword:  "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "green-valley-high", result.Tenant.Slug)
	assert.Equal(t, models.TenantStatusActive, result.Tenant.Status)
	assert.Equal(t, "basic", result.Tenant.SubscriptionPlan)
	assert.Empty(t, result.TempPassword) // 调用方自带密码绝不回显

	// 四个默认角色就位
	roles, err := NewRoleService(db).GetByTenant(result.Tenant.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 4)

	// 管理员持有ADMIN角色且记录为首个管理员
	require.Len(t, result.AdminUser.Roles, 1)
	assert.Equal(t, models.RoleAdmin, result.AdminUser.Roles[0].Name)
	require.NotNil(t, result.Tenant.PrimaryAdminUserID)
	assert.Equal(t, result.AdminUser.ID, *result.Tenant.PrimaryAdminUserID)
}

func TestProvisionGeneratesTempPassword(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	result, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Sunrise Academy",
		AdminFirstName: "John",
		AdminLastName:  "Smith",
		AdminEmail:     "john@sunrise.edu",
	})
	require.NoError(t, err)

	assert.Len(t, result.TempPassword, 12)
	assert.True(t, result.AdminUser.CheckPassword(result.TempPassword))
}

func TestProvisionRejectsDuplicateAdminEmail(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	_, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "First School",
		AdminFirstName: "A", AdminLastName: "B",
		AdminEmail: "admin@shared.edu", AdminPassword: "secret123",
	})
	require.NoError(t, err)

	// 邮箱跨租户全局唯一，预检直接拒绝且不留下半成品租户
	_, err = service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Second School",
		AdminFirstName: "C", AdminLastName: "D",
		AdminEmail: "Admin@Shared.edu", AdminPassword: "secret123",
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	var count int64
	db.Model(&models.Tenant{}).Where("slug = ?", "second-school").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestProvisionRollbackOnAdminFailure(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	// 密码过短令第7步创建管理员失败，触发补偿回滚
	_, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Doomed School",
		AdminFirstName: "A", AdminLastName: "B",
		AdminEmail: "admin@doomed.edu", AdminPassword: "abc",
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)

	// 租户已软删，默认查询不可见
	var tenant models.Tenant
	err = db.Where("slug = ?", "doomed-school").First(&tenant).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 回滚前已置inactive
	err = db.Unscoped().Where("slug = ?", "doomed-school").First(&tenant).Error
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusInactive, tenant.Status)

	// 角色同样软删
	var roleCount int64
	db.Model(&models.Role{}).Where("tenant_id = ?", tenant.ID).Count(&roleCount)
	assert.Equal(t, int64(0), roleCount)
}

func TestProvisionRejectsDuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	_, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Hilltop School",
		AdminFirstName: "A", AdminLastName: "B",
		AdminEmail: "a@hilltop.edu", AdminPassword: "secret123",
	})
	require.NoError(t, err)

	_, err = service.ProvisionWithAdmin(1, &ProvisionInput{
		Name: "Another Name", Slug: "hilltop-school",
		AdminFirstName: "C", AdminLastName: "D",
		AdminEmail: "c@hilltop.edu", AdminPassword: "secret123",
	})
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}

func TestProvisionValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	tests := []struct {
		name  string
		input *ProvisionInput
	}{
		{"租户名称为空", &ProvisionInput{AdminFirstName: "A", AdminLastName: "B", AdminEmail: "a@b.cd"}},
		{"管理员姓名为空", &ProvisionInput{Name: "School", AdminEmail: "a@b.cd"}},
		{"管理员邮箱不合法", &ProvisionInput{Name: "School", AdminFirstName: "A", AdminLastName: "B", AdminEmail: "nope"}},
		{"名称无法推导slug", &ProvisionInput{Name: "中文名称", AdminFirstName: "A", AdminLastName: "B", AdminEmail: "a@b.cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ProvisionWithAdmin(1, tt.input)
			require.Error(t, err)
			assertAppErrorCode(t, err, 400)
		})
	}
}

func TestGetForProviderScoped(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	result, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Scoped School",
		AdminFirstName: "A", AdminLastName: "B",
		AdminEmail: "a@scoped.edu", AdminPassword: "secret123",
	})
	require.NoError(t, err)

	// 归属运营方可见
	_, err = service.GetForProvider(1, result.Tenant.ID)
	require.NoError(t, err)

	// 其他运营方一律按不存在处理
	_, err = service.GetForProvider(2, result.Tenant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	service := NewTenantService(db)

	result, err := service.ProvisionWithAdmin(1, &ProvisionInput{
		Name:           "Status School",
		AdminFirstName: "A", AdminLastName: "B",
		AdminEmail: "a@status.edu", AdminPassword: "secret123",
	})
	require.NoError(t, err)

	tenant, err := service.UpdateStatus(1, result.Tenant.ID, models.TenantStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusSuspended, tenant.Status)

	_, err = service.UpdateStatus(1, result.Tenant.ID, "frozen")
	require.Error(t, err)
	assertAppErrorCode(t, err, 400)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Green Valley High", "green-valley-high"},
		{"  Spaced  Out  ", "spaced--out"},
		{"ABC-123", "abc-123"},
		{"St. Mary's School", "st-marys-school"},
		{"中文名称", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input=%q", tt.in)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	password := GenerateTempPassword(12)
	assert.Len(t, password, 12)
	for _, r := range password {
		assert.True(t, strings.ContainsRune(tempPasswordAlphabet, r), "字符 %q 不在字符集内", r)
	}

	// 两次生成几乎不可能相同
	assert.NotEqual(t, password, GenerateTempPassword(12))
}
