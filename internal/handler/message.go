package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/repository"
)

const messageListLimit = 50

// MessageHandler serves the per-user inbox.  Review notifications from
// the queue consumer land here alongside direct messages.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Users    *repository.UserRepo
}

func NewMessageHandler(m *repository.MessageRepo, u *repository.UserRepo) *MessageHandler {
	return &MessageHandler{Messages: m, Users: u}
}

// List returns the caller's inbox, newest first.
func (h *MessageHandler) List(c echo.Context) error {
	if h.Messages == nil {
		return c.JSON(http.StatusOK, []repository.MessageDetail{})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Messages.ListForUser(ctx, uid, messageListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list messages failed"})
	}
	return c.JSON(http.StatusOK, msgs)
}

type sendMessageReq struct {
	ToUserID uint64 `json:"to_user_id"`
	Content  string `json:"content"`
}

// Send delivers a direct message to another user.
func (h *MessageHandler) Send(c echo.Context) error {
	if h.Messages == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ToUserID == 0 || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to_user_id/content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.ToUserID); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup recipient failed"})
	}

	id, err := h.Messages.Create(ctx, uid, req.ToUserID, req.Content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send message failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// MarkRead flags one of the caller's messages as read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	if h.Messages == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Messages.MarkRead(ctx, id, uid); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark read failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
