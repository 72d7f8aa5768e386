// internal/handlers/arbitrator.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type ArbitratorHandler struct {
	arbitratorService *services.ArbitratorService
}

func NewArbitratorHandler(arbitratorService *services.ArbitratorService) *ArbitratorHandler {
	return &ArbitratorHandler{
		arbitratorService: arbitratorService,
	}
}

// POST /arbitrators
func (h *ArbitratorHandler) RegisterArbitrator(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.RegisterArbitratorRequest
	if !bindJSON(c, &req) {
		return
	}

	arbitrator, err := h.arbitratorService.RegisterArbitrator(c.Request.Context(), caller, req.Stake)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(utils.GetLangFromContext(c), i18n.KeyArbitratorRegistered),
		"arbitrator": arbitrator,
	})
}

// POST /arbitrators/unstake
func (h *ArbitratorHandler) Unstake(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	result, err := h.arbitratorService.Unstake(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyArbitratorUnstaked),
		"unstake": result,
	})
}

// GET /arbitrators
func (h *ArbitratorHandler) GetArbitrators(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	searchParams := services.ArbitratorSearchParams{PaginationParams: params}
	if active := queryBool(c, "active_only"); active != nil {
		searchParams.ActiveOnly = *active
	}

	arbitrators, total, err := h.arbitratorService.SearchArbitrators(c.Request.Context(), searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(arbitrators, total, params))
}

// GET /arbitrators/:address
func (h *ArbitratorHandler) GetArbitrator(c *gin.Context) {
	arbitrator, err := h.arbitratorService.GetArbitrator(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"arbitrator": arbitrator,
	})
}

// GET /arbitrators/:address/active-disputes
func (h *ArbitratorHandler) GetActiveDisputeCount(c *gin.Context) {
	counts, err := h.arbitratorService.ActiveDisputeCount(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, counts)
}

// POST /admin/arbitrators/reconcile
func (h *ArbitratorHandler) Reconcile(c *gin.Context) {
	diverged, err := h.arbitratorService.ReconcileActiveDisputes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"repaired": diverged,
	})
}
