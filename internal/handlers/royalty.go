// internal/handlers/royalty.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type RoyaltyHandler struct {
	royaltyService *services.RoyaltyService
}

func NewRoyaltyHandler(royaltyService *services.RoyaltyService) *RoyaltyHandler {
	return &RoyaltyHandler{
		royaltyService: royaltyService,
	}
}

type PayRevenueRequest struct {
	Amount int64 `json:"amount"`
}

// GET /ip-assets/:id/royalties/breakdown?amount=
func (h *RoyaltyHandler) PreviewBreakdown(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "amount"), nil)
		return
	}

	breakdown, err := h.royaltyService.ComputeBreakdown(c.Request.Context(), assetID, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"breakdown": breakdown,
	})
}

// POST /ip-assets/:id/revenue
func (h *RoyaltyHandler) PayRevenue(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req PayRevenueRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.royaltyService.PayRevenue(c.Request.Context(), caller, assetID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(utils.GetLangFromContext(c), i18n.KeyRevenuePaid),
		"payment":   receipt.Payment,
		"breakdown": receipt.Breakdown,
	})
}

// POST /ip-assets/:id/royalties/claim
func (h *RoyaltyHandler) ClaimRoyalties(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	claim, err := h.royaltyService.ClaimRoyalties(c.Request.Context(), assetID, caller.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRoyaltyClaimed),
		"claim":   claim,
	})
}

// GET /ip-assets/:id/royalties/:account
func (h *RoyaltyHandler) GetRoyaltyInfo(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}

	info, err := h.royaltyService.GetRoyaltyInfo(c.Request.Context(), assetID, c.Param("account"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, info)
}

// GET /ip-assets/:id/payments
func (h *RoyaltyHandler) GetPayments(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	payments, total, err := h.royaltyService.ListPayments(c.Request.Context(), assetID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(payments, total, params))
}
