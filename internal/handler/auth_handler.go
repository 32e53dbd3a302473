package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/svshs-enrollment-api/internal/middleware"
	"github.com/noah-isme/svshs-enrollment-api/internal/models"
	"github.com/noah-isme/svshs-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/svshs-enrollment-api/pkg/errors"
	"github.com/noah-isme/svshs-enrollment-api/pkg/response"
)

// AuthHandler exposes applicant login and status tracking.
type AuthHandler struct {
	auth *service.AuthService
	resp *response.Writer
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService, resp *response.Writer) *AuthHandler {
	return &AuthHandler{auth: auth, resp: resp}
}

// Login authenticates an applicant with LRN and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.resp.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload"))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, "login successful", result)
}

// MyEnrollments returns the caller's enrollment history.
func (h *AuthHandler) MyEnrollments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		h.resp.Error(c, appErrors.ErrUnauthorized)
		return
	}
	views, err := h.auth.MyEnrollments(c.Request.Context(), claims.LRN)
	if err != nil {
		h.resp.Error(c, err)
		return
	}
	h.resp.OK(c, "", gin.H{"lrn": claims.LRN, "track_code": claims.TrackCode, "enrollments": views})
}

func claimsFromContext(c *gin.Context) *models.StudentClaims {
	value, exists := c.Get(middleware.ContextStudentKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.StudentClaims)
	if !ok {
		return nil
	}
	return claims
}
