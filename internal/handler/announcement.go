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

const announcementListLimit = 20

// AnnouncementHandler serves the company news feed.  Reading is public;
// writing is admin only.
type AnnouncementHandler struct {
	Announcements *repository.AnnouncementRepo
}

func NewAnnouncementHandler(a *repository.AnnouncementRepo) *AnnouncementHandler {
	return &AnnouncementHandler{Announcements: a}
}

// List returns the newest announcements, capped at 20.
func (h *AnnouncementHandler) List(c echo.Context) error {
	if h.Announcements == nil {
		return c.JSON(http.StatusOK, []repository.AnnouncementDetail{})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Announcements.List(ctx, announcementListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list announcements failed"})
	}
	return c.JSON(http.StatusOK, items)
}

type announcementReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// normalize trims and validates the payload, returning an error message
// for the 400 response or "" when valid.
func (r *announcementReq) normalize() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	if r.Title == "" || r.Content == "" {
		return "title/content required"
	}
	switch r.Type {
	case "":
		r.Type = "info"
	case "info", "warning", "success":
	default:
		return "type must be info, warning or success"
	}
	return ""
}

func (h *AnnouncementHandler) Create(c echo.Context) error {
	if h.Announcements == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.normalize(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Announcements.Create(ctx, req.Title, req.Content, req.Type, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create announcement failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

func (h *AnnouncementHandler) Update(c echo.Context) error {
	if h.Announcements == nil {
		return dbUnavailable(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req announcementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.normalize(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Announcements.Update(ctx, id, req.Title, req.Content, req.Type); err != nil {
		if err == repository.ErrAnnouncementNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "announcement not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update announcement failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *AnnouncementHandler) Delete(c echo.Context) error {
	if h.Announcements == nil {
		return dbUnavailable(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Announcements.Delete(ctx, id); err != nil {
		if err == repository.ErrAnnouncementNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "announcement not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete announcement failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
