package middleware

import (
	"errors"
	"runtime/debug"

	"fieldops/pkg/gateway"
	"fieldops/pkg/logger"
	"fieldops/pkg/response"
	"fieldops/pkg/scope"
	"fieldops/pkg/tenantctx"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorHandler 错误处理中间件
// 兜住panic并记录堆栈；handler通过c.Error挂上的错误在这里统一映射，
// 已写过响应的请求不再二次写入
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().WithFields(logrus.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Errorf("Panic recovered: %v\n%s", r, debug.Stack())
				response.ServerError(c, "服务器内部错误")
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeErrorResponse(c, c.Errors.Last().Err)
	}
}

// 未被handler消化的错误按隔离语义兜底映射
// 越界访问对外与不存在同响应
func writeErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, scope.ErrTenantMismatch):
		response.NotFound(c, "记录不存在")
	case errors.Is(err, tenantctx.ErrNoTenantBound):
		response.Unauthorized(c, "租户上下文缺失")
	default:
		logger.GetLogger().WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Errorf("请求处理失败: %v", err)
		response.ServerError(c, "服务器内部错误")
	}
}
