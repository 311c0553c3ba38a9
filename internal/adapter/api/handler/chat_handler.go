package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lostfound/internal/usecase"
	"lostfound/pkg/response"
	"lostfound/pkg/utils"
)

type ChatHandler struct {
	messaging *usecase.MessagingUseCase
}

func NewChatHandler(messaging *usecase.MessagingUseCase) *ChatHandler {
	return &ChatHandler{
		messaging: messaging,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// ListConversations returns the authenticated user's conversation summaries.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	userID, _ := c.Get("uid").(string)

	conversations, err := h.messaging.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

// GetThread returns the message history with one counterpart about one item,
// marking inbound messages read as a side effect.
func (h *ChatHandler) GetThread(c echo.Context) error {
	userID, _ := c.Get("uid").(string)
	itemID := c.Param("itemId")
	otherID := c.Param("userId")

	params := utils.GetPaginationParams(c)

	messages, total, err := h.messaging.GetThread(c.Request().Context(), userID, itemID, otherID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

// SendMessage appends a message to the thread with one counterpart.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	userID, _ := c.Get("uid").(string)
	itemID := c.Param("itemId")
	receiverID := c.Param("userId")

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.messaging.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ItemID:     itemID,
		ReceiverID: receiverID,
		Content:    req.Content,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkMessageRead flips a single message's read flag.
func (h *ChatHandler) MarkMessageRead(c echo.Context) error {
	userID, _ := c.Get("uid").(string)
	messageID := c.Param("id")

	if err := h.messaging.MarkMessageRead(c.Request().Context(), userID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
