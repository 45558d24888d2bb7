package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/repository"
)

// TeamHandler serves the admin roster endpoints.
type TeamHandler struct {
	Users *repository.UserRepo
}

func NewTeamHandler(u *repository.UserRepo) *TeamHandler { return &TeamHandler{Users: u} }

type teamMember struct {
	ID           uint64     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastSignedIn *time.Time `json:"last_signed_in,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// List returns every user, ordered by name.
func (h *TeamHandler) List(c echo.Context) error {
	if h.Users == nil {
		return c.JSON(http.StatusOK, []teamMember{})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	members := make([]teamMember, 0, len(users))
	for _, u := range users {
		m := teamMember{
			ID:       u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Role:     u.Role,
			IsActive: u.IsActive,
		}
		if u.LastSignedIn.Valid {
			t := u.LastSignedIn.Time
			m.LastSignedIn = &t
		}
		m.CreatedAt = u.CreatedAt
		members = append(members, m)
	}
	return c.JSON(http.StatusOK, members)
}

// ToggleRole flips a member between user and admin.  Admins cannot
// demote themselves, so the company always keeps at least one admin.
func (h *TeamHandler) ToggleRole(c echo.Context) error {
	if h.Users == nil {
		return dbUnavailable(c)
	}
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == callerID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change your own role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	newRole := model.RoleAdmin
	if u.Role == model.RoleAdmin {
		newRole = model.RoleUser
	}
	if err := h.Users.UpdateRole(ctx, id, newRole); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "role": newRole})
}

// Remove deletes a member; balances and requests cascade away with the
// row.  Self-removal is rejected.
func (h *TeamHandler) Remove(c echo.Context) error {
	if h.Users == nil {
		return dbUnavailable(c)
	}
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == callerID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot remove yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove user failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
