package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

type conflictService interface {
	Detect(ctx context.Context, query dto.ConflictQuery) ([]models.ConflictDetails, error)
	Stats(ctx context.Context, query dto.ConflictQuery) (*models.ConflictStats, error)
	ValidateResolution(ctx context.Context, query dto.ConflictQuery, conflictID string, strategy models.ResolutionStrategy) (*dto.ValidateResolutionResult, error)
}

// ConflictHandler exposes conflict detection endpoints.
type ConflictHandler struct {
	service conflictService
}

// NewConflictHandler builds a new handler.
func NewConflictHandler(service conflictService) *ConflictHandler {
	return &ConflictHandler{service: service}
}

func conflictQueryFromRequest(c *gin.Context) dto.ConflictQuery {
	query := dto.ConflictQuery{
		PeriodID:     c.Query("periodId"),
		ProposalID:   c.Query("proposalId"),
		AllocationID: c.Query("allocationId"),
	}
	if raw := c.Query("severity"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			query.Severities = append(query.Severities, models.ConflictSeverity(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if raw := c.Query("type"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			query.Types = append(query.Types, models.ConflictType(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	return query
}

// List godoc
// @Summary Detect conflicts in the scoped allocation set
// @Tags Conflicts
// @Produce json
// @Param periodId query string false "Academic period scope"
// @Param proposalId query string false "Proposal scope (takes precedence)"
// @Param severity query string false "Comma-separated severity filter"
// @Param type query string false "Comma-separated type filter"
// @Param allocationId query string false "Only conflicts involving this allocation"
// @Success 200 {object} response.Envelope
// @Router /conflicts [get]
func (h *ConflictHandler) List(c *gin.Context) {
	conflicts, err := h.service.Detect(c.Request.Context(), conflictQueryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// Stats godoc
// @Summary Aggregate conflict counts by type and severity
// @Tags Conflicts
// @Produce json
// @Param periodId query string false "Academic period scope"
// @Param proposalId query string false "Proposal scope (takes precedence)"
// @Success 200 {object} response.Envelope
// @Router /conflicts/stats [get]
func (h *ConflictHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), conflictQueryFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ValidateResolution godoc
// @Summary Check whether a resolution strategy can clear a conflict
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param periodId query string false "Academic period scope"
// @Param proposalId query string false "Proposal scope (takes precedence)"
// @Param payload body dto.ValidateResolutionRequest true "Strategy"
// @Success 200 {object} response.Envelope
// @Router /conflicts/{id}/resolution/validate [post]
func (h *ConflictHandler) ValidateResolution(c *gin.Context) {
	var req dto.ValidateResolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	strategy := models.ResolutionStrategy(strings.ToUpper(strings.TrimSpace(req.Strategy)))
	result, err := h.service.ValidateResolution(c.Request.Context(), conflictQueryFromRequest(c), c.Param("id"), strategy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
