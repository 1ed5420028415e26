package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"smp/internal/middleware"
	"smp/internal/models"
	"smp/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerCtx(providerID uint, tenantID uint, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(tenantID)}}
	c.Set(middleware.ContextKeyProviderID, providerID)
	return c, recorder
}

func TestResetAdminPassword(t *testing.T) {
	f := newScopeFixture(t)
	require.NoError(t, f.db.Model(&models.Tenant{}).Where("id = ?", f.tenant.ID).
		Update("primary_admin_user_id", f.admin.ID).Error)

	handler := NewProviderTenantHandler(
		services.NewTenantService(f.db),
		services.NewUserService(f.db),
		services.NewRoleService(f.db),
	)

	c, recorder := providerCtx(f.tenant.ProviderID, f.tenant.ID, `{"new_password":"rotated-99"}`)
	handler.ResetAdminPassword(c)
	require.Equal(t, 200, recorder.Code)

	var admin models.User
	require.NoError(t, f.db.First(&admin, f.admin.ID).Error)
	assert.True(t, admin.CheckPassword("rotated-99"))

	// 跨运营方一律404，不确认租户存在性
	c, recorder = providerCtx(f.tenant.ProviderID+1, f.tenant.ID, `{"new_password":"rotated-99"}`)
	handler.ResetAdminPassword(c)
	assert.Equal(t, 404, recorder.Code)
}

func TestResetAdminPasswordWithoutPrimaryAdmin(t *testing.T) {
	f := newScopeFixture(t)
	handler := NewProviderTenantHandler(
		services.NewTenantService(f.db),
		services.NewUserService(f.db),
		services.NewRoleService(f.db),
	)

	c, recorder := providerCtx(f.tenant.ProviderID, f.tenant.ID, `{"new_password":"rotated-99"}`)
	handler.ResetAdminPassword(c)
	assert.Equal(t, 400, recorder.Code)
}
