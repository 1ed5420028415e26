package middleware

import (
	"net/http/httptest"
	"testing"

	"smp/internal/database"
	"smp/internal/models"
	"smp/internal/services"
	"smp/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupProviderGuard(t *testing.T) (*gorm.DB, *models.ProviderUser, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Provider{}, &models.ProviderUser{}))
	database.SetDB(db)

	user, err := services.NewProviderService(db).Bootstrap("Platform", "Root", "Admin", "root@platform.io", "secret123")
	require.NoError(t, err)

	token, err := jwt.GetJWTManager().GenerateProviderToken(user.ID, user.Email)
	require.NoError(t, err)
	return db, user, token
}

func runProviderGuard(token string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("GET", "/api/provider/tenants", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	RequireProviderLogin()(c)
	if !c.IsAborted() {
		c.Status(200)
	}
	return recorder
}

func TestProviderGuardAllowsActiveOperator(t *testing.T) {
	_, _, token := setupProviderGuard(t)
	recorder := runProviderGuard(token)
	assert.Equal(t, 200, recorder.Code)
}

func TestProviderGuardRejectsInactiveProvider(t *testing.T) {
	db, user, token := setupProviderGuard(t)
	require.NoError(t, db.Model(&models.Provider{}).Where("id = ?", user.ProviderID).
		Update("is_active", false).Error)

	recorder := runProviderGuard(token)
	assert.Equal(t, 403, recorder.Code)
}

func TestProviderGuardRejectsDeletedProvider(t *testing.T) {
	// 运营方被软删除后预加载结果为nil，守卫同样拒绝
	db, user, token := setupProviderGuard(t)
	require.NoError(t, db.Delete(&models.Provider{}, user.ProviderID).Error)

	recorder := runProviderGuard(token)
	assert.Equal(t, 403, recorder.Code)
}
