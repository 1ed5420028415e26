package jwt

import (
	"errors"
	"smp/pkg/config"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 主体类型常量
// 租户用户令牌不携带type或type不为provider；运营方令牌type固定为provider，
// 两类令牌互不通用，守卫侧必须显式校验type
const (
	PrincipalTenantUser = "tenant_user"
	PrincipalProvider   = "provider"
)

// JWTClaims JWT声明
type JWTClaims struct {
	PrincipalID uint   `json:"principal_id"`
	TenantID    uint   `json:"tenant_id,omitempty"` // 仅租户用户令牌携带
	Email       string `json:"email"`
	Type        string `json:"type,omitempty"` // provider 或留空（租户用户）
	jwt.RegisteredClaims
}

// IsProvider 是否为运营方令牌
func (c *JWTClaims) IsProvider() bool {
	return c.Type == PrincipalProvider
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey        string
	tokenDuration    time.Duration // 租户用户令牌有效期
	providerDuration time.Duration // 运营方令牌有效期
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, tokenDuration, providerDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:        secretKey,
		tokenDuration:    tokenDuration,
		providerDuration: providerDuration,
	}
}

// GenerateUserToken 生成租户用户令牌
func (manager *JWTManager) GenerateUserToken(userID, tenantID uint, email string) (string, error) {
	claims := JWTClaims{
		PrincipalID: userID,
		TenantID:    tenantID,
		Email:       email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "SMP",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// GenerateProviderToken 生成运营方用户令牌
func (manager *JWTManager) GenerateProviderToken(providerUserID uint, email string) (string, error) {
	claims := JWTClaims{
		PrincipalID: providerUserID,
		Email:       email,
		Type:        PrincipalProvider,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.providerDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "SMP",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证JWT令牌
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("意外的签名方法")
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, errors.New("无法解析token声明")
	}

	return claims, nil
}

// GetTokenDuration 获取租户用户令牌有效期
func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// GetProviderTokenDuration 获取运营方令牌有效期
func (manager *JWTManager) GetProviderTokenDuration() time.Duration {
	return manager.providerDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenDuration, err := time.ParseDuration(cfg.JWT.TokenDuration)
		if err != nil {
			tokenDuration = time.Hour
		}
		providerDuration, err := time.ParseDuration(cfg.JWT.ProviderTokenDuration)
		if err != nil {
			providerDuration = 24 * time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, tokenDuration, providerDuration)
	})
	return defaultManager
}
