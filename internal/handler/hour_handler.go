package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-tools/tutor-hours-api/internal/models"
	"github.com/campus-tools/tutor-hours-api/internal/service"
	appErrors "github.com/campus-tools/tutor-hours-api/pkg/errors"
	"github.com/campus-tools/tutor-hours-api/pkg/response"
)

// HourServicePort is the slice of HourService the handler depends on.
type HourServicePort interface {
	Add(ctx context.Context, userID string, req service.HourRequest) (*models.TutoringHour, error)
	Get(ctx context.Context, userID, hourID string) (*models.TutoringHour, error)
	Update(ctx context.Context, userID, hourID string, req service.HourRequest) (*models.TutoringHour, error)
	Delete(ctx context.Context, userID, hourID string) error
}

// HourHandler wires the authenticated tutoring-hour endpoints.
type HourHandler struct {
	service HourServicePort
}

// NewHourHandler creates a new handler.
func NewHourHandler(svc HourServicePort) *HourHandler {
	return &HourHandler{service: svc}
}

// Create godoc
// @Summary Add a tutoring hour
// @Description Create a new weekly tutoring slot owned by the signed-in TA
// @Tags Hours
// @Accept json
// @Produce json
// @Param payload body service.HourRequest true "Hour payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /hours [post]
func (h *HourHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.HourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tutoring hour payload"))
		return
	}

	hour, err := h.service.Add(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, hour)
}

// Get godoc
// @Summary Get one of your tutoring hours
// @Description Load a single owned slot, used to prefill edits and confirm deletion
// @Tags Hours
// @Produce json
// @Param id path string true "Hour ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /hours/{id} [get]
func (h *HourHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	hour, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, hour, nil)
}

// Update godoc
// @Summary Edit a tutoring hour
// @Description Overwrite the slot fields of an owned tutoring hour
// @Tags Hours
// @Accept json
// @Produce json
// @Param id path string true "Hour ID"
// @Param payload body service.HourRequest true "Hour payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /hours/{id} [put]
func (h *HourHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.HourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tutoring hour payload"))
		return
	}

	hour, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, hour, nil)
}

// Delete godoc
// @Summary Delete a tutoring hour
// @Description Permanently remove an owned tutoring hour
// @Tags Hours
// @Produce json
// @Param id path string true "Hour ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /hours/{id} [delete]
func (h *HourHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
