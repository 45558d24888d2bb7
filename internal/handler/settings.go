package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/repository"
)

// SettingsHandler serves the organization profile and the leave policy
// rules.  Everyone may read; only admins may write.  The rules are
// advisory: clients use them to pre-validate the request form, the
// server stores them verbatim.
type SettingsHandler struct {
	Settings *repository.SettingsRepo
}

func NewSettingsHandler(s *repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{Settings: s}
}

// GetOrganization returns the organization profile, or 404 while it has
// not been configured yet.
func (h *SettingsHandler) GetOrganization(c echo.Context) error {
	if h.Settings == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not configured"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Settings.GetProfile(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load organization failed"})
	}
	if profile.Name == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not configured"})
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateOrganization stores the organization profile.  Admin only.
func (h *SettingsHandler) UpdateOrganization(c echo.Context) error {
	if h.Settings == nil {
		return dbUnavailable(c)
	}
	var req repository.OrgProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.UpdateProfile(ctx, req); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update organization failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetRules returns the leave policy rules; an unconfigured installation
// answers with the defaults.  Degraded mode does the same so the client
// form keeps working.
func (h *SettingsHandler) GetRules(c echo.Context) error {
	if h.Settings == nil {
		return c.JSON(http.StatusOK, repository.DefaultLeaveRules())
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rules, err := h.Settings.GetRules(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rules failed"})
	}
	return c.JSON(http.StatusOK, rules)
}

// UpdateRules stores the leave policy rules.  Admin only.
func (h *SettingsHandler) UpdateRules(c echo.Context) error {
	if h.Settings == nil {
		return dbUnavailable(c)
	}
	var req repository.LeaveRules
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MinNoticeDays < 0 || req.MaxConsecutiveDays < 0 || req.AutoApproveUnderDays < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rule values must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Settings.UpdateRules(ctx, req); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update rules failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
