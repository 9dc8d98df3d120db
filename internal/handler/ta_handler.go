package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-tools/tutor-hours-api/internal/dto"
	"github.com/campus-tools/tutor-hours-api/internal/models"
	"github.com/campus-tools/tutor-hours-api/internal/service"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
	"github.com/campus-tools/tutor-hours-api/pkg/response"
)

// TAServicePort is the slice of TAService the handler depends on.
type TAServicePort interface {
	Dashboard(ctx context.Context, userID string) (*dto.DashboardView, error)
	UpdateProfile(ctx context.Context, userID string, req service.ProfileRequest) (*models.TA, error)
}

// TAHandler wires the signed-in TA's dashboard and profile endpoints.
type TAHandler struct {
	service TAServicePort
}

// NewTAHandler creates a new handler.
func NewTAHandler(svc TAServicePort) *TAHandler {
	return &TAHandler{service: svc}
}

// Dashboard godoc
// @Summary TA dashboard
// @Description The signed-in TA's profile, bound courses and currently-active hours
// @Tags TAs
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *TAHandler) Dashboard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.service.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// UpdateProfile godoc
// @Summary Update TA profile
// @Description Rewrite the signed-in TA's major, bio and course bindings
// @Tags TAs
// @Accept json
// @Produce json
// @Param payload body service.ProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /profile [put]
func (h *TAHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	ta, err := h.service.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ta, nil)
}
