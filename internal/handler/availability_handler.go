package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-tools/tutor-hours-api/internal/dto"
	"github.com/campus-tools/tutor-hours-api/pkg/response"
)

// AvailabilityServicePort is the slice of AvailabilityService the handler
// depends on.
type AvailabilityServicePort interface {
	HomeListing(ctx context.Context) (*dto.HomeAvailability, error)
	TADetail(ctx context.Context, taID string) (*dto.TADetail, error)
	Export(ctx context.Context, format string) ([]byte, string, string, error)
}

// AvailabilityHandler serves the public availability views.
type AvailabilityHandler struct {
	service AvailabilityServicePort
}

// NewAvailabilityHandler creates a new handler.
func NewAvailabilityHandler(svc AvailabilityServicePort) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Home godoc
// @Summary Public availability listing
// @Description All currently-active tutoring hours grouped by weekday and by course
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Home(c *gin.Context) {
	listing, err := h.service.HomeListing(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, listing, nil)
}

// Export godoc
// @Summary Export the active schedule
// @Description Download the currently-active tutoring hours as CSV or PDF
// @Tags Availability
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /availability/export [get]
func (h *AvailabilityHandler) Export(c *gin.Context) {
	payload, contentType, filename, err := h.service.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// TADetail godoc
// @Summary Public TA detail
// @Description A TA's profile, courses and currently-active hours
// @Tags Availability
// @Produce json
// @Param id path string true "TA ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tas/{id} [get]
func (h *AvailabilityHandler) TADetail(c *gin.Context) {
	detail, err := h.service.TADetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}
