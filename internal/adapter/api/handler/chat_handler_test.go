package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/adapter/api"
	"lostfound/internal/adapter/repository"
	"lostfound/internal/domain/entity"
	ws "lostfound/internal/infrastructure/websocket"
	"lostfound/internal/usecase"
)

func newTestHandler(t *testing.T) (*ChatHandler, *usecase.MessagingUseCase) {
	t.Helper()

	messages := repository.NewMemoryMessageRepository()
	items := repository.NewMemoryItemRepository()
	profiles := repository.NewMemoryProfileRepository()

	items.Save(&entity.Item{ID: "item-1", Title: "Blue Backpack", Type: entity.ItemTypeLost, OwnerID: "u2"})
	profiles.Save(&entity.Profile{ID: "u1", FullName: "Alice Tan"})
	profiles.Save(&entity.Profile{ID: "u2", FullName: "Budi Santoso"})

	uc := usecase.NewMessagingUseCase(messages, items, profiles, ws.NewManager())
	return NewChatHandler(uc), uc
}

func newContext(e *echo.Echo, method, target, body, uid string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set("uid", uid)
	}
	return c, rec
}

func TestSendMessageEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	e.Validator = api.NewValidator()

	c, rec := newContext(e, http.MethodPost, "/v1/chats/item-1/with/u2", `{"content":"hello"}`, "u1")
	c.SetParamNames("itemId", "userId")
	c.SetParamValues("item-1", "u2")

	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"content":"hello"`)
}

func TestSendMessageEndpointValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	e.Validator = api.NewValidator()

	c, rec := newContext(e, http.MethodPost, "/v1/chats/item-1/with/u2", `{"content":""}`, "u1")
	c.SetParamNames("itemId", "userId")
	c.SetParamValues("item-1", "u2")

	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestSendMessageEndpointUnauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()
	e.Validator = api.NewValidator()

	c, rec := newContext(e, http.MethodPost, "/v1/chats/item-1/with/u2", `{"content":"hello"}`, "")
	c.SetParamNames("itemId", "userId")
	c.SetParamValues("item-1", "u2")

	require.NoError(t, h.SendMessage(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHENTICATED")
}

func TestGetThreadEndpoint(t *testing.T) {
	h, uc := newTestHandler(t)
	e := echo.New()

	_, err := uc.SendMessage(context.Background(), "u1", usecase.SendMessageInput{
		ItemID:     "item-1",
		ReceiverID: "u2",
		Content:    "hello",
	})
	require.NoError(t, err)

	c, rec := newContext(e, http.MethodGet, "/v1/chats/item-1/with/u1", "", "u2")
	c.SetParamNames("itemId", "userId")
	c.SetParamValues("item-1", "u1")

	require.NoError(t, h.GetThread(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"hello"`)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestListConversationsEndpoint(t *testing.T) {
	h, uc := newTestHandler(t)
	e := echo.New()

	_, err := uc.SendMessage(context.Background(), "u1", usecase.SendMessageInput{
		ItemID:     "item-1",
		ReceiverID: "u2",
		Content:    "hello",
	})
	require.NoError(t, err)

	c, rec := newContext(e, http.MethodGet, "/v1/chats", "", "u2")

	require.NoError(t, h.ListConversations(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"item_title":"Blue Backpack"`)
	assert.Contains(t, rec.Body.String(), `"other_user_name":"Alice Tan"`)
	assert.Contains(t, rec.Body.String(), `"unread_count":1`)
}

func TestMarkMessageReadEndpoint(t *testing.T) {
	h, uc := newTestHandler(t)
	e := echo.New()

	msg, err := uc.SendMessage(context.Background(), "u1", usecase.SendMessageInput{
		ItemID:     "item-1",
		ReceiverID: "u2",
		Content:    "hello",
	})
	require.NoError(t, err)

	c, rec := newContext(e, http.MethodPut, "/v1/messages/"+msg.ID+"/read", "", "u2")
	c.SetParamNames("id")
	c.SetParamValues(msg.ID)

	require.NoError(t, h.MarkMessageRead(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkMessageReadEndpointNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	c, rec := newContext(e, http.MethodPut, "/v1/messages/missing/read", "", "u2")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.MarkMessageRead(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, HealthCheck(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}
