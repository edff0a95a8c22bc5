package websocket

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"doodle-academy/internal/hub"
	"doodle-academy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// preloadTimeout 限制升级前加载会话数据的时间
const preloadTimeout = 5 * time.Second

// WebSocketHandler 负责加载会话初始数据、升级连接并把客户端交给 Hub
type WebSocketHandler struct {
	upgrader        websocket.Upgrader
	hub             *hub.Hub
	progressService *service.ProgressService
	projectService  *service.ProjectService
	draftService    *service.DraftService
}

// NewWebSocketHandler 创建 WebSocketHandler 实例。
// allowedOrigin 为空时接受任意来源。
func NewWebSocketHandler(h *hub.Hub, progressService *service.ProgressService, projectService *service.ProjectService, draftService *service.DraftService, allowedOrigin string) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if progressService == nil || projectService == nil || draftService == nil {
		panic("services cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || strings.EqualFold(origin, allowedOrigin)
		},
	}

	return &WebSocketHandler{
		upgrader:        upgrader,
		hub:             h,
		progressService: progressService,
		projectService:  projectService,
		draftService:    draftService,
	}
}

// HandleConnection 处理 GET /ws/canvas[?project=<id>]
// 带 project 时打开该作品，否则恢复用户最近的草稿。
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		logrus.Error("WS Handler: User ID in context is not uint")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	projectID := c.Query("project")
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID})

	// 1. 升级前加载会话数据，失败时还能返回普通 HTTP 错误
	ctx, cancel := context.WithTimeout(c.Request.Context(), preloadTimeout)
	seed, err := h.loadSeed(ctx, userID, projectID)
	cancel()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		default:
			logCtx.WithError(err).Error("WS Handler: Failed to load session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load canvas"})
		}
		return
	}

	// 2. 升级连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已经写出了 HTTP 错误响应
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	// 3. 注册到 Hub 后再启动读写协程
	client := hub.NewClient(h.hub, conn, userID)
	if !h.hub.Register(client, seed) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}
	go client.Run()
	logCtx.Info("WS Handler: Client registered and pumps started")
}

func (h *WebSocketHandler) loadSeed(ctx context.Context, userID uint, projectID string) (hub.SessionSeed, error) {
	eng, err := h.progressService.Engine(ctx, userID)
	if err != nil {
		return hub.SessionSeed{}, err
	}
	seed := hub.SessionSeed{
		ProjectID: projectID,
		Progress:  eng.Progress(),
		Colors:    eng.Palette().Items(),
	}

	if projectID != "" {
		_, drawing, err := h.projectService.Get(ctx, userID, projectID)
		if err != nil {
			return hub.SessionSeed{}, err
		}
		seed.Drawing = drawing
		return seed, nil
	}

	draft, drawing, err := h.draftService.GetDraftForClient(ctx, userID)
	if err != nil {
		return hub.SessionSeed{}, err
	}
	seed.Drawing = drawing
	seed.Version = draft.Version
	return seed, nil
}
