package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fieldops/internal/database"
	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/config"
	"fieldops/pkg/jwt"
	"fieldops/pkg/logger"
	"fieldops/pkg/queue"
	"fieldops/pkg/response"
	"fieldops/pkg/tenantctx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// DispatchHandler 派单看板处理器
// 看板通过WebSocket实时接收本租户的派单事件
type DispatchHandler struct {
	upgrader    websocket.Upgrader
	queue       *queue.DispatchQueue
	log         *logrus.Logger
	jwtManager  *jwt.JWTManager
	userService *services.UserService
}

// NewDispatchHandler 创建派单看板处理器
func NewDispatchHandler() *DispatchHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &DispatchHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				for _, allowed := range allowedOrigins {
					if allowed == "*" {
						return true
					}
				}

				// 同源请求Origin为空，允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 32,
			WriteBufferSize: 1024 * 32,
		},
		queue:       database.GetDispatchQueue(),
		log:         logger.GetLogger(),
		jwtManager:  jwt.GetJWTManager(),
		userService: services.NewUserService(database.GetDB(), database.GetGateway()),
	}
}

// Board 派单看板WebSocket连接
// 只订阅token中租户的事件频道，无法订阅其他租户
func (h *DispatchHandler) Board(c *gin.Context) {
	// WebSocket不支持自定义header，token走查询参数
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "无效的令牌"})
		return
	}

	// 连接建立时重新加载用户，与HTTP中间件同一套校验：
	// 已禁用的用户不能靠未过期token继续挂着事件流
	user, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "用户不存在"})
		return
	}

	tenantID, err := boardTenantFor(user, claims)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.log.WithFields(logrus.Fields{
		"user_id":   claims.UserID,
		"tenant_id": tenantID,
	}).Info("Dispatch board WebSocket connection established")

	h.handleBoardConnection(conn, tenantID)
}

// boardTenantFor 决定看板订阅哪个租户的频道
// 规则和HTTP中间件一致：禁用用户拒绝，普通用户固定本租户，平台管理员可用token中切换的租户
func boardTenantFor(user *models.User, claims *jwt.JWTClaims) (uint, error) {
	if user.Status != models.UserStatusActive {
		return 0, errors.New("用户已被禁用")
	}

	tenantID := claims.CurrentTenantID
	if !user.IsPlatformAdmin || tenantID == 0 {
		tenantID = user.TenantID
	}
	if tenantID == 0 {
		return 0, errors.New("令牌未绑定租户")
	}
	return tenantID, nil
}

// handleBoardConnection 转发本租户的派单事件
func (h *DispatchHandler) handleBoardConnection(conn *websocket.Conn, tenantID uint) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.queue.Subscribe(ctx, tenantID)
	defer pubsub.Close()

	// 等待订阅成功
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.WithError(err).Error("Failed to subscribe to dispatch channel")
		return
	}

	go h.readPump(conn, cancel)

	ch := pubsub.Channel()

	const writeTimeout = 10 * time.Second

	// 每60秒发送一次ping保持连接
	pingTicker := time.NewTicker(60 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.WithError(err).Error("Failed to send ping")
				return
			}

		case msg, ok := <-ch:
			if !ok {
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.WithError(err).Error("Failed to send event to client")
				return
			}
		}
	}
}

// readPump 处理客户端消息（主要是ping/pong）
func (h *DispatchHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	pongWait := 300 * time.Second
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Error("WebSocket unexpected close")
			}
			break
		}
	}
}

// RecentEvents 最近的派单事件（HTTP轮询入口）
func (h *DispatchHandler) RecentEvents(c *gin.Context) {
	cc, err := tenantctx.Current(c.Request.Context())
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.Unauthorized(c, "未登录")
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "limit格式错误")
			return
		}
		limit = parsed
	}

	events, err := h.queue.RecentEvents(c.Request.Context(), cc.TenantID, limit)
	if err != nil {
		response.ServerError(c, "查询派单事件失败")
		return
	}
	response.Success(c, events)
}

// matchOrigin 检查origin是否匹配allowed模式
// 支持精确匹配和通配符匹配（如 *.example.com）
func matchOrigin(origin, allowed string) bool {
	if origin == allowed {
		return true
	}

	if strings.HasPrefix(allowed, "*.") {
		domain := allowed[2:]

		originHost := origin
		if idx := strings.Index(origin, "://"); idx != -1 {
			originHost = origin[idx+3:]
		}
		if idx := strings.Index(originHost, ":"); idx != -1 {
			originHost = originHost[:idx]
		}

		if originHost == domain {
			return true
		}
		if strings.HasSuffix(originHost, "."+domain) {
			return true
		}
	}

	return false
}
