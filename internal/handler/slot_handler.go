package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/response"
)

type slotCatalogService interface {
	Catalog(ctx context.Context) (*models.SlotCatalog, error)
	ByShift(ctx context.Context) (map[models.Shift][]models.ClassSlot, error)
}

// SlotHandler exposes the institutional slot catalog.
type SlotHandler struct {
	service slotCatalogService
}

// NewSlotHandler builds a new handler.
func NewSlotHandler(service slotCatalogService) *SlotHandler {
	return &SlotHandler{service: service}
}

// List godoc
// @Summary List catalog slots ordered by shift and start time
// @Tags Slots
// @Produce json
// @Param groupBy query string false "Set to shift to group slots per shift"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	if c.Query("groupBy") == "shift" {
		grouped, err := h.service.ByShift(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, grouped, nil)
		return
	}

	catalog, err := h.service.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog.Slots(), nil)
}
