package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/timetable-api/internal/dto"
	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
	"github.com/uniplan/timetable-api/pkg/response"
)

type allocationService interface {
	List(ctx context.Context, filter models.AllocationFilter) ([]models.Allocation, error)
	Grid(ctx context.Context, filter models.AllocationFilter) (*dto.AllocationGridResponse, error)
	Validate(ctx context.Context, req dto.CreateAllocationRequest) (*dto.ValidateAllocationResult, error)
	Create(ctx context.Context, req dto.CreateAllocationRequest, claims *models.JWTClaims) (*models.Allocation, error)
	Delete(ctx context.Context, id string, claims *models.JWTClaims) error
}

// AllocationHandler exposes allocation endpoints.
type AllocationHandler struct {
	service allocationService
}

// NewAllocationHandler builds a new handler.
func NewAllocationHandler(service allocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

func allocationFilterFromQuery(c *gin.Context) models.AllocationFilter {
	return models.AllocationFilter{
		PeriodID:    c.Query("periodId"),
		ProposalID:  c.Query("proposalId"),
		SectionID:   c.Query("sectionId"),
		ProfessorID: c.Query("professorId"),
	}
}

// List godoc
// @Summary List allocations by period, proposal, section or professor
// @Tags Allocations
// @Produce json
// @Param periodId query string false "Academic period filter"
// @Param proposalId query string false "Proposal filter"
// @Param sectionId query string false "Section filter"
// @Param professorId query string false "Professor filter"
// @Success 200 {object} response.Envelope
// @Router /allocations [get]
func (h *AllocationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), allocationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Grid godoc
// @Summary Position allocations on the weekday and slot grid
// @Tags Allocations
// @Produce json
// @Param periodId query string false "Academic period filter"
// @Param proposalId query string false "Proposal filter"
// @Success 200 {object} response.Envelope
// @Router /allocations/grid [get]
func (h *AllocationHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), allocationFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Validate godoc
// @Summary Validate a candidate allocation without persisting it
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.CreateAllocationRequest true "Candidate allocation"
// @Success 200 {object} response.Envelope
// @Router /allocations/validate [post]
func (h *AllocationHandler) Validate(c *gin.Context) {
	var req dto.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create an allocation after re-validating it
// @Tags Allocations
// @Accept json
// @Produce json
// @Param payload body dto.CreateAllocationRequest true "Allocation payload"
// @Success 201 {object} response.Envelope
// @Router /allocations [post]
func (h *AllocationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Delete godoc
// @Summary Remove an allocation
// @Tags Allocations
// @Produce json
// @Param id path string true "Allocation ID"
// @Success 204 "No Content"
// @Router /allocations/{id} [delete]
func (h *AllocationHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
