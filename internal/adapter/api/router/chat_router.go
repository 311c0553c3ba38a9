package router

import (
	"github.com/labstack/echo/v4"

	"lostfound/internal/adapter/api/handler"
	"lostfound/internal/adapter/api/middleware"
)

// SetupChatRouter registers the messaging routes (excluding WebSocket).
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("", chatHandler.ListConversations)              // GET  /v1/chats
	chatGroup.GET("/:itemId/with/:userId", chatHandler.GetThread) // GET  /v1/chats/:itemId/with/:userId
	chatGroup.POST("/:itemId/with/:userId", chatHandler.SendMessage)

	messageGroup := e.Group("/v1/messages")
	messageGroup.Use(authMiddleware.Authenticate)

	messageGroup.PUT("/:id/read", chatHandler.MarkMessageRead) // PUT /v1/messages/:id/read
}
