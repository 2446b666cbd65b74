package handlers

import (
	"net/http"
	"strings"
	"time"

	"tmig/internal/services"
	"tmig/pkg/config"
	"tmig/pkg/jwt"
	"tmig/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 运行日志实时跟踪。轮询审计日志表向客户端推送增量，
// 运行结束且没有新日志后关闭连接
type WebSocketHandler struct {
	upgrader   websocket.Upgrader
	log        *logrus.Logger
	jwtManager *jwt.JWTManager
	service    *services.MigrationService
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(service *services.MigrationService) *WebSocketHandler {
	// 获取CORS配置
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 如果Origin为空（同源请求），允许
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || matchOrigin(origin, allowed) {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024 * 8,
			WriteBufferSize: 1024 * 8,
		},
		log:        logger.GetLogger(),
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
		service:    service,
	}
}

// matchOrigin Origin精确匹配（忽略大小写）
func matchOrigin(origin, allowed string) bool {
	return strings.EqualFold(origin, allowed)
}

// RunLogs 处理运行日志的WebSocket连接
func (h *WebSocketHandler) RunLogs(c *gin.Context) {
	runID := c.Param("run_id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "运行ID不能为空"})
		return
	}

	// 从查询参数获取token（WebSocket不支持自定义header）
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
	if !claims.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
		return
	}

	if _, err := h.service.GetRun(runID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "运行记录不存在"})
		return
	}

	// 升级为WebSocket连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.log.WithFields(logrus.Fields{
		"run_id":   runID,
		"username": claims.Username,
	}).Info("WebSocket connection established")

	h.streamRunLogs(conn, runID)
}

// streamRunLogs 按ID游标轮询审计日志表并推送增量
func (h *WebSocketHandler) streamRunLogs(conn *websocket.Conn, runID string) {
	const pollInterval = time.Second
	const pageSize = 200

	var lastID uint
	for {
		logs, err := h.service.RunLogsAfter(runID, lastID, pageSize)
		if err != nil {
			h.log.WithError(err).Error("查询审计日志失败")
			return
		}

		for i := range logs {
			if err := conn.WriteJSON(&logs[i]); err != nil {
				// 客户端断开
				return
			}
			lastID = logs[i].ID
		}

		run, err := h.service.GetRun(runID)
		if err != nil {
			return
		}
		if !run.Running && len(logs) == 0 {
			// 运行已结束且没有新日志，正常关闭
			closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished")
			_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
			return
		}

		time.Sleep(pollInterval)
	}
}
