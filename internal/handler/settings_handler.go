package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// SettingsHandler exposes the enrollment-window endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
	resp     *response.Writer
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService, resp *response.Writer) *SettingsHandler {
	return &SettingsHandler{settings: settings, resp: resp}
}

// Status reports whether enrollment is open. Public, polled by the form.
func (h *SettingsHandler) Status(c *gin.Context) {
	window, err := h.settings.Window(c.Request.Context())
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"is_open": window.IsOpen})
}

type toggleRequest struct {
	IsOpen *bool `json:"is_open" binding:"required"`
}

// Toggle flips the manual enrollment switch. Admin only.
func (h *SettingsHandler) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "is_open is required"))
		return
	}
	if err := h.settings.Toggle(c.Request.Context(), *req.IsOpen); err != nil {
		h.resp.Error(c, err)
		return
	}
	state := "CLOSED"
	if *req.IsOpen {
		state = "OPEN"
	}
	h.resp.OK(c, fmt.Sprintf("Enrollment is now %s", state), nil)
}

type autoScheduleRequest struct {
	AutoStart string `json:"auto_start"`
	AutoEnd   string `json:"auto_end"`
}

// UpdateAutoSchedule sets the automatic open/close window. Admin only.
func (h *SettingsHandler) UpdateAutoSchedule(c *gin.Context) {
	var req autoScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if err := h.settings.UpdateAutoWindow(c.Request.Context(), req.AutoStart, req.AutoEnd); err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, "Automatic schedule updated successfully.", nil)
}
