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

type proposalService interface {
	Create(ctx context.Context, req dto.CreateProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	Get(ctx context.Context, id string) (*models.Proposal, error)
	List(ctx context.Context, filter models.ProposalFilter, claims *models.JWTClaims) ([]models.Proposal, error)
	Permissions(proposal *models.Proposal, claims *models.JWTClaims) dto.ProposalPermissions
	Submit(ctx context.Context, id string, req dto.SubmitProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	Approve(ctx context.Context, id string, req dto.ApproveProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	Reject(ctx context.Context, id string, req dto.RejectProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	Reopen(ctx context.Context, id string, req dto.ReopenProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	SendBack(ctx context.Context, id string, req dto.SendBackProposalRequest, claims *models.JWTClaims) (*models.Proposal, error)
	Grid(ctx context.Context, id string) (*dto.AllocationGridResponse, error)
	ExportPDF(ctx context.Context, id string) ([]byte, string, error)
	ExportCSV(ctx context.Context, id string) ([]byte, string, error)
}

// ProposalHandler exposes the proposal lifecycle endpoints.
type ProposalHandler struct {
	service proposalService
}

// NewProposalHandler builds a new handler.
func NewProposalHandler(service proposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// Create godoc
// @Summary Open a new draft proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param payload body dto.CreateProposalRequest true "Proposal payload"
// @Success 201 {object} response.Envelope
// @Router /proposals [post]
func (h *ProposalHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid proposal payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List proposals visible to the caller
// @Tags Proposals
// @Produce json
// @Param periodId query string false "Academic period filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /proposals [get]
func (h *ProposalHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.ProposalFilter{
		PeriodID: c.Query("periodId"),
		Status:   models.ProposalStatus(c.Query("status")),
	}
	items, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a proposal with the caller's action permissions
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id} [get]
func (h *ProposalHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	proposal, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"permissions": h.service.Permissions(proposal, claims),
	}
	response.JSON(c, http.StatusOK, proposal, nil, meta)
}

// Submit godoc
// @Summary Submit a draft for approval
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.SubmitProposalRequest false "Optional notes"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/submit [post]
func (h *ProposalHandler) Submit(c *gin.Context) {
	var req dto.SubmitProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return
	}
	h.respondTransition(c)(h.service.Submit(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// Approve godoc
// @Summary Approve a pending proposal
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.ApproveProposalRequest false "Optional notes"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/approve [post]
func (h *ProposalHandler) Approve(c *gin.Context) {
	var req dto.ApproveProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return
	}
	h.respondTransition(c)(h.service.Approve(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// Reject godoc
// @Summary Reject a pending proposal with a justification
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.RejectProposalRequest true "Justification"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/reject [post]
func (h *ProposalHandler) Reject(c *gin.Context) {
	var req dto.RejectProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
		return
	}
	h.respondTransition(c)(h.service.Reject(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// Reopen godoc
// @Summary Return a rejected proposal to draft
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.ReopenProposalRequest false "Optional reason"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/reopen [post]
func (h *ProposalHandler) Reopen(c *gin.Context) {
	var req dto.ReopenProposalRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		return
	}
	h.respondTransition(c)(h.service.Reopen(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// SendBack godoc
// @Summary Return an approved proposal to draft with a mandatory reason
// @Tags Proposals
// @Accept json
// @Produce json
// @Param id path string true "Proposal ID"
// @Param payload body dto.SendBackProposalRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/send-back [post]
func (h *ProposalHandler) SendBack(c *gin.Context) {
	var req dto.SendBackProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid send-back payload"))
		return
	}
	h.respondTransition(c)(h.service.SendBack(c.Request.Context(), c.Param("id"), req, claimsFromContext(c)))
}

// Grid godoc
// @Summary Position the proposal's allocations on the timetable grid
// @Tags Proposals
// @Produce json
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Envelope
// @Router /proposals/{id}/grid [get]
func (h *ProposalHandler) Grid(c *gin.Context) {
	grid, err := h.service.Grid(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// ExportPDF godoc
// @Summary Download the proposal timetable as a PDF grid
// @Tags Proposals
// @Produce application/pdf
// @Param id path string true "Proposal ID"
// @Success 200 {file} binary
// @Router /proposals/{id}/export.pdf [get]
func (h *ProposalHandler) ExportPDF(c *gin.Context) {
	payload, filename, err := h.service.ExportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ExportCSV godoc
// @Summary Download the proposal's allocations as CSV
// @Tags Proposals
// @Produce text/csv
// @Param id path string true "Proposal ID"
// @Success 200 {file} binary
// @Router /proposals/{id}/export.csv [get]
func (h *ProposalHandler) ExportCSV(c *gin.Context) {
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

func (h *ProposalHandler) respondTransition(c *gin.Context) func(*models.Proposal, error) {
	return func(proposal *models.Proposal, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		claims := claimsFromContext(c)
		meta := map[string]interface{}{
			"permissions": h.service.Permissions(proposal, claims),
		}
		response.JSON(c, http.StatusOK, proposal, nil, meta)
	}
}

// bindOptionalJSON decodes a body when one is present. Transition endpoints
// with optional notes accept an empty body.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return err
	}
	return nil
}
