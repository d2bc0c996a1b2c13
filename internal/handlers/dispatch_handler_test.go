package handlers

import (
	"testing"

	"fieldops/internal/models"
	"fieldops/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardTenantForDisabledUser(t *testing.T) {
	user := &models.User{TenantID: 1, Status: models.UserStatusDisabled}
	claims := &jwt.JWTClaims{UserID: 1, TenantID: 1, CurrentTenantID: 1}

	// 禁用后即使token未过期也不能再开看板
	_, err := boardTenantFor(user, claims)
	assert.EqualError(t, err, "用户已被禁用")
}

func TestBoardTenantForRegularUser(t *testing.T) {
	user := &models.User{TenantID: 1, Status: models.UserStatusActive}
	// 普通用户的token即使声称别的租户也回到本租户
	claims := &jwt.JWTClaims{UserID: 1, TenantID: 1, CurrentTenantID: 2}

	tenantID, err := boardTenantFor(user, claims)
	require.NoError(t, err)
	assert.Equal(t, uint(1), tenantID)
}

func TestBoardTenantForPlatformAdmin(t *testing.T) {
	user := &models.User{TenantID: 1, Status: models.UserStatusActive, IsPlatformAdmin: true}
	claims := &jwt.JWTClaims{UserID: 1, TenantID: 1, CurrentTenantID: 2}

	tenantID, err := boardTenantFor(user, claims)
	require.NoError(t, err)
	assert.Equal(t, uint(2), tenantID)

	// 未切换时回落到所属租户
	claims.CurrentTenantID = 0
	tenantID, err = boardTenantFor(user, claims)
	require.NoError(t, err)
	assert.Equal(t, uint(1), tenantID)
}

func TestBoardTenantForNoTenant(t *testing.T) {
	user := &models.User{TenantID: 0, Status: models.UserStatusActive, IsPlatformAdmin: true}
	claims := &jwt.JWTClaims{UserID: 1}

	_, err := boardTenantFor(user, claims)
	assert.EqualError(t, err, "令牌未绑定租户")
}
