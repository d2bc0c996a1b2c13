package handlers

import (
	"errors"

	"fieldops/pkg/gateway"
	"fieldops/pkg/logger"
	"fieldops/pkg/response"
	"fieldops/pkg/scope"
	"fieldops/pkg/tenantctx"

	"github.com/gin-gonic/gin"
)

// handleCoreError 隔离核心错误到HTTP响应的统一映射
// 租户越界(ErrTenantMismatch)对外和不存在一样返回404，
// 内部日志仍区分两者，便于审计
func handleCoreError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, gateway.ErrNotFound):
		response.NotFound(c, "记录不存在")
	case errors.Is(err, scope.ErrTenantMismatch):
		logger.GetLogger().WithField("path", c.FullPath()).
			Warnf("跨租户访问被拒绝: %v", err)
		response.NotFound(c, "记录不存在")
	case errors.Is(err, scope.ErrOwnershipUnresolvable):
		response.BadRequest(c, "关联记录引用无效")
	case errors.Is(err, tenantctx.ErrNoTenantBound),
		errors.Is(err, tenantctx.ErrContextAlreadyBound):
		// 中间件漏绑定属于编程错误，不是业务错误
		logger.GetLogger().Errorf("租户上下文错误: %v", err)
		response.Unauthorized(c, "租户上下文缺失")
	case errors.Is(err, scope.ErrUnregisteredEntity):
		logger.GetLogger().Errorf("实体未注册归属描述: %v", err)
		response.ServerError(c, "服务器内部错误")
	default:
		return false
	}
	return true
}
