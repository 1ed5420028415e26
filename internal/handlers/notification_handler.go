package handlers

import (
	"net/http"
	"time"

	"smp/internal/middleware"
	"smp/internal/services"
	"smp/pkg/logger"
	"smp/pkg/pagination"
	"smp/pkg/queue"
	"smp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	notificationService *services.NotificationService
	queue               *queue.RedisQueue
}

// NewNotificationHandler 创建通知处理器实例
func NewNotificationHandler(notificationService *services.NotificationService, q *queue.RedisQueue) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		queue:               q,
	}
}

// CreateNotificationRequest 创建通知请求
type CreateNotificationRequest struct {
	UserID   *uint  `json:"user_id"` // 为空时租户广播
	Title    string `json:"title" binding:"required,max=200"`
	Body     string `json:"body" binding:"max=2000"`
	Category string `json:"category" binding:"max=50"`
}

// Create 创建通知
func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.GetCurrentTenantID(c)
	notification, err := h.notificationService.Create(tenantID, req.UserID, req.Title, req.Body, req.Category)
	if err != nil {
		response.HandleError(c, err, "创建通知失败")
		return
	}
	response.SuccessWithMessage(c, "通知创建成功", notification)
}

// List 本人可见通知列表
func (h *NotificationHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	user := middleware.GetCurrentUser(c)

	notifications, total, err := h.notificationService.ListForUser(
		user.TenantID, user.ID, c.Query("unread") == "true", params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询通知失败")
		return
	}
	response.SuccessWithPage(c, notifications, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// UnreadCount 未读数量
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	count, err := h.notificationService.UnreadCount(user.TenantID, user.ID)
	if err != nil {
		response.ServerError(c, "统计未读通知失败")
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkRead 标记已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		response.BadRequest(c, "无效的通知ID")
		return
	}

	user := middleware.GetCurrentUser(c)
	notification, err := h.notificationService.MarkRead(user.TenantID, user.ID, id)
	if err != nil {
		response.HandleError(c, err, "通知")
		return
	}
	response.Success(c, notification)
}

// MarkAllRead 全部标记已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	affected, err := h.notificationService.MarkAllRead(user.TenantID, user.ID)
	if err != nil {
		response.ServerError(c, "标记已读失败")
		return
	}
	response.Success(c, gin.H{"marked": affected})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 跨域控制由CORS中间件承担
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream 通知实时推送（WebSocket）
// 从租户队列阻塞消费，只下发广播或发给本人的消息
func (h *NotificationHandler) Stream(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		response.Unauthorized(c, "未登录")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Warnf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	appLogger := logger.GetLogger()
	ctx := c.Request.Context()

	// 读协程只用来感知客户端断开
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := h.queue.Consume(ctx, user.TenantID, 5*time.Second)
		if err != nil {
			appLogger.Warnf("消费通知队列失败: %v", err)
			return
		}
		if msg == nil {
			// 超时无消息，发心跳保活
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}
		if msg.UserID != 0 && msg.UserID != user.ID {
			// 发给别人的定向消息放回队列
			if err := h.queue.Publish(msg); err != nil {
				appLogger.Warnf("通知回队失败: %v", err)
			}
			continue
		}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
