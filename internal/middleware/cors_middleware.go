package middleware

import (
	"strings"
	"time"

	"fieldops/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS 按配置构建CORS中间件
// 配置"*"时放开全部来源，此时凭证必须关闭（两者同开浏览器会拒绝响应）；
// 列表来源支持"*.example.com"通配
func SetupCORS() gin.HandlerFunc {
	cfg := config.GetConfig()

	corsConfig := cors.Config{
		AllowMethods:  cfg.CORS.AllowMethods,
		AllowHeaders:  cfg.CORS.AllowHeaders,
		ExposeHeaders: cfg.CORS.ExposeHeaders,
		MaxAge:        time.Duration(cfg.CORS.MaxAge) * time.Hour,
	}

	if allowsAnyOrigin(cfg.CORS.AllowOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
		corsConfig.AllowWildcard = true
		corsConfig.AllowCredentials = cfg.CORS.AllowCredentials
	}

	return cors.New(corsConfig)
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
