package router

import (
	"github.com/labstack/echo/v4"

	"lostfound/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the realtime route. Auth happens inside the
// handler because websocket clients pass the token as a query param.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws/chats", wsHandler.HandleThreadSocket)
}
