package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrimsg/internal/infrastructure/realtime"
	"agrimsg/internal/pkg/messaging/cache"
	"agrimsg/internal/pkg/messaging/presentation/controller"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// RegisterRoutes registers messaging HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, qc *cache.QueryCache, notifier notifsvc.Notifier, router *realtime.Router) {
	createCtl := controller.NewCreateConversationController(pool, qc, notifier)
	listConvCtl := controller.NewListConversationsController(pool, qc)
	sendMsgCtl := controller.NewSendMessageController(pool, qc, notifier, router)
	listMsgCtl := controller.NewListMessagesController(pool)
	markReadCtl := controller.NewMarkReadController(pool, qc)
	editMsgCtl := controller.NewEditMessageController(pool, qc, router)
	addPartCtl := controller.NewAddParticipantController(pool, qc)
	removePartCtl := controller.NewRemoveParticipantController(pool, qc)
	unreadCtl := controller.NewUnreadCountController(pool, qc)
	socketCtl := controller.NewSocketController(pool, qc, notifier, router)

	// POST /api/v1/conversations -> create a conversation (direct, group or announcement)
	g.POST("/conversations", createCtl.Handle())

	// GET /api/v1/conversations?user_id= -> the user's inbox with previews
	g.GET("/conversations", listConvCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> send a message
	g.POST("/conversations/:conversationId/messages", sendMsgCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> fetch messages
	g.GET("/conversations/:conversationId/messages", listMsgCtl.Handle())

	// POST /api/v1/conversations/:conversationId/read -> mark the conversation read
	g.POST("/conversations/:conversationId/read", markReadCtl.Handle())

	// POST /api/v1/conversations/:conversationId/participants -> add a member
	g.POST("/conversations/:conversationId/participants", addPartCtl.Handle())

	// DELETE /api/v1/conversations/:conversationId/participants/:userId -> remove a member
	g.DELETE("/conversations/:conversationId/participants/:userId", removePartCtl.Handle())

	// PATCH /api/v1/messages/:messageId -> edit a message
	g.PATCH("/messages/:messageId", editMsgCtl.Handle())

	// GET /api/v1/messages/unread?user_id= -> unread total for the badge
	g.GET("/messages/unread", unreadCtl.Handle())

	// GET /api/v1/messages/ws -> websocket endpoint for realtime traffic
	g.GET("/messages/ws", socketCtl.Handle())
}
