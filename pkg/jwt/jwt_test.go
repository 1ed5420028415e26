package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, 24*time.Hour)
}

func TestUserTokenRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateUserToken(42, 7, "jane@school.edu")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.PrincipalID)
	assert.Equal(t, uint(7), claims.TenantID)
	assert.Equal(t, "jane@school.edu", claims.Email)
	assert.False(t, claims.IsProvider())
	assert.Equal(t, "SMP", claims.Issuer)
}

func TestProviderTokenRoundTrip(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateProviderToken(3, "ops@platform.io")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, uint(3), claims.PrincipalID)
	assert.True(t, claims.IsProvider())
	// 运营方令牌不携带租户
	assert.Equal(t, uint(0), claims.TenantID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := newTestManager().GenerateUserToken(1, 1, "a@b.cd")
	require.NoError(t, err)

	other := NewJWTManager("different-secret", time.Hour, 24*time.Hour)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	// 有效期为负，签出的令牌立即过期
	expired := NewJWTManager("test-secret", -time.Minute, -time.Minute)

	token, err := expired.GenerateUserToken(1, 1, "a@b.cd")
	require.NoError(t, err)

	_, err = expired.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := newTestManager().VerifyToken("not.a.token")
	assert.Error(t, err)
}
