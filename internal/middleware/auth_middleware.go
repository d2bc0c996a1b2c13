package middleware

import (
	"strings"

	"fieldops/internal/database"
	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/jwt"
	"fieldops/pkg/response"
	"fieldops/pkg/tenantctx"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService: services.NewUserService(database.GetDB(), database.GetGateway()),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 登录校验 + 租户上下文绑定
// 每个请求在这里绑定一次调用方上下文，之后网关从请求context读取租户，
// 业务代码不再手工传tenant_id
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := authHeader[7:]

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}

		// 检查用户状态
		if user.Status != models.UserStatusActive {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 普通用户的当前租户只能是所属租户，平台管理员可切换
		currentTenantID := claims.CurrentTenantID
		if !user.IsPlatformAdmin {
			currentTenantID = user.TenantID
		}
		if currentTenantID == 0 {
			currentTenantID = user.TenantID
		}

		// 绑定调用方上下文到请求context
		// 请求结束context销毁即释放绑定，取消/出错路径同样成立
		ctx, err := tenantctx.Bind(c.Request.Context(), currentTenantID, user.ID, user.IsPlatformAdmin)
		if err != nil {
			response.Unauthorized(c, "租户上下文绑定失败")
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctx)

		// 将用户信息保存到gin上下文
		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", user.TenantID)
		c.Set("current_tenant_id", currentTenantID)
		c.Set("username", claims.Username)
		c.Set("is_platform_admin", user.IsPlatformAdmin)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequirePlatformAdmin 要求平台管理员
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if !user.(*models.User).IsPlatformAdmin {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
