package handlers

import (
	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/jwt"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService   *services.UserService
	tenantService *services.TenantService
	jwtManager    *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		tenantService: tenantService,
		jwtManager:    jwt.GetJWTManager(),
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	TenantCode string `json:"tenant_code" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Authenticate(req.TenantCode, req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.TenantID, user.Username, user.IsPlatformAdmin)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user":  user,
	})
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	token, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	response.Success(c, gin.H{"token": token})
}

// Me 获取当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		response.Unauthorized(c, "请先登录")
		return
	}

	currentTenantID, _ := c.Get("current_tenant_id")
	response.Success(c, gin.H{
		"user":              user,
		"current_tenant_id": currentTenantID,
	})
}

// SwitchTenantRequest 租户切换请求
type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SwitchTenant 平台管理员切换当前操作租户
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	if !user.IsPlatformAdmin {
		response.Forbidden(c, "需要平台管理员权限")
		return
	}

	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// 目标租户必须存在且活跃
	tenant, err := h.tenantService.GetByID(req.TenantID)
	if err != nil {
		response.NotFound(c, "租户不存在")
		return
	}
	if tenant.Status != models.TenantStatusActive {
		response.BadRequest(c, "租户已停用")
		return
	}

	token, err := h.jwtManager.GenerateTokenWithTenant(
		user.ID, user.TenantID, tenant.ID, user.Username, user.IsPlatformAdmin)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token":  token,
		"tenant": tenant,
	})
}
