package handler

import (
	"context"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"lostfound/internal/adapter/api/middleware"
	"lostfound/internal/domain/entity"
	ws "lostfound/internal/infrastructure/websocket"
	"lostfound/internal/usecase"
	"lostfound/pkg/errors"
	"lostfound/pkg/logger"
	"lostfound/pkg/response"
)

type WebSocketHandler struct {
	messaging      *usecase.MessagingUseCase
	authMiddleware *middleware.AuthMiddleware
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict in production
	},
}

func NewWebSocketHandler(messaging *usecase.MessagingUseCase, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		messaging:      messaging,
		authMiddleware: authMiddleware,
	}
}

// HandleThreadSocket upgrades the connection and streams new messages for
// exactly one conversation, identified by item_id and counterpart. Browser
// websocket clients cannot set headers, so the token rides a query param.
func (h *WebSocketHandler) HandleThreadSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return response.Error(c, errors.Unauthenticated("Authentication required", nil))
	}

	userID, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, errors.Unauthenticated("Invalid or expired token", err))
	}

	itemID := c.QueryParam("item_id")
	otherID := c.QueryParam("with")

	sub, err := h.messaging.Subscribe(userID, itemID, otherID)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		sub.Close()
		return errors.Transport("Failed to upgrade connection", err)
	}

	logger.Info("Thread socket opened for user %s (item %s, with %s)", userID, itemID, otherID)

	client := &ws.Client{
		Conn: conn,
		Sub:  sub,
		// The request context dies with the upgrade; read marking happens on
		// its own context for as long as the socket lives.
		Delivered: func(message *entity.Message) {
			h.messaging.HandleDelivered(context.Background(), userID, message)
		},
	}

	go client.WritePump()
	go client.ReadPump()

	return nil
}
