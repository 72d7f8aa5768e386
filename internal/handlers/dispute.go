// internal/handlers/dispute.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type DisputeHandler struct {
	disputeService *services.DisputeService
}

func NewDisputeHandler(disputeService *services.DisputeService) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
	}
}

// POST /disputes
func (h *DisputeHandler) RaiseDispute(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.RaiseDisputeRequest
	if !bindJSON(c, &req) {
		return
	}

	dispute, err := h.disputeService.RaiseDispute(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyDisputeRaised),
		"dispute": dispute,
	})
}

// GET /disputes
func (h *DisputeHandler) GetDisputes(c *gin.Context) {
	h.search(c, services.DisputeSearchParams{Disputer: c.Query("disputer")})
}

// GET /ip-assets/:id/disputes
func (h *DisputeHandler) GetAssetDisputes(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	h.search(c, services.DisputeSearchParams{IPAssetID: assetID})
}

func (h *DisputeHandler) search(c *gin.Context, searchParams services.DisputeSearchParams) {
	params := utils.GetPaginationParams(c)
	searchParams.PaginationParams = params
	if status := c.Query("status"); status != "" {
		s := models.DisputeStatus(status)
		searchParams.Status = &s
	}

	disputes, total, err := h.disputeService.SearchDisputes(c.Request.Context(), searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(disputes, total, params))
}

// GET /disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}

	dispute, err := h.disputeService.GetDispute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"dispute": dispute,
	})
}

// POST /disputes/:id/arbitrators
func (h *DisputeHandler) AssignArbitrators(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.AssignArbitratorsRequest
	if !bindJSON(c, &req) {
		return
	}

	arbitration, err := h.disputeService.AssignArbitrators(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(utils.GetLangFromContext(c), i18n.KeyArbitratorsAssigned),
		"arbitration": arbitration,
	})
}

// POST /disputes/:id/decisions
func (h *DisputeHandler) SubmitDecision(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.SubmitDecisionRequest
	if !bindJSON(c, &req) {
		return
	}

	arbitration, err := h.disputeService.SubmitDecision(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(utils.GetLangFromContext(c), i18n.KeyDecisionSubmitted),
		"arbitration": arbitration,
	})
}

// POST /disputes/:id/resolve-cooldown
func (h *DisputeHandler) ResolveAfterCooldown(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.ResolveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.disputeService.CheckAndResolveAfterCooldown(c.Request.Context(), caller, id, &req)
	h.resolved(c, view, err)
}

// POST /disputes/:id/resolve-deadline
func (h *DisputeHandler) ResolveAfterDeadline(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}

	var req services.ResolveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.disputeService.ResolveAfterDeadline(c.Request.Context(), id, &req)
	h.resolved(c, view, err)
}

// POST /disputes/:id/resolve-unassigned
func (h *DisputeHandler) ResolveWithoutArbitrators(c *gin.Context) {
	id, ok := parseID(c, "id", "dispute")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	view, err := h.disputeService.ResolveWithoutArbitrators(c.Request.Context(), caller, id)
	h.resolved(c, view, err)
}

func (h *DisputeHandler) resolved(c *gin.Context, view *services.DisputeView, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyDisputeResolved),
		"dispute": view,
	})
}
