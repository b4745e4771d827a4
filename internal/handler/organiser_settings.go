package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/repository"
)

type settingsReq struct {
	DisplayName string `json:"display_name" form:"display_name"`
	Description string `json:"description" form:"description"`
}

// GetSettings returns the organiser's public profile.
func (h *OrganiserHandler) GetSettings(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	s, err := h.Settings.Get(c.Request().Context(), oid)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "settings not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"display_name": s.DisplayName,
		"description":  s.Description,
	})
}

// UpdateSettings overwrites the organiser's public profile.  The display
// name heads the attendee listing, so it must not be blank.
func (h *OrganiserHandler) UpdateSettings(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req settingsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name required"})
	}

	err = h.Settings.Update(c.Request().Context(), oid, req.DisplayName, strings.TrimSpace(req.Description))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{
			"display_name": req.DisplayName,
			"description":  strings.TrimSpace(req.Description),
		})
	case errors.Is(err, repository.ErrSettingsNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "settings not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update settings failed"})
	}
}
