// internal/handlers/ip_asset.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type IPAssetHandler struct {
	ipService       *services.IPService
	transferService *services.TransferService
	metadataService *services.MetadataService
}

func NewIPAssetHandler(ipService *services.IPService, transferService *services.TransferService, metadataService *services.MetadataService) *IPAssetHandler {
	return &IPAssetHandler{
		ipService:       ipService,
		transferService: transferService,
		metadataService: metadataService,
	}
}

// GET /ip-assets
func (h *IPAssetHandler) GetIPAssets(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.IPSearchParams{
		PaginationParams: params,
		Owner:            c.Query("owner"),
		Disputed:         queryBool(c, "disputed"),
	}

	ipAssets, total, err := h.ipService.SearchIPAssets(c.Request.Context(), searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(ipAssets, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /ip-assets
func (h *IPAssetHandler) RegisterIP(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.RegisterIPRequest
	if !bindJSON(c, &req) {
		return
	}

	ipAsset, err := h.ipService.RegisterIP(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyIPAssetRegistered),
		"ip_asset": ipAsset,
	})
}

// GET /ip-assets/:id
func (h *IPAssetHandler) GetIPAsset(c *gin.Context) {
	id, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}

	ipAsset, err := h.ipService.GetIPAsset(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"ip_asset": ipAsset,
	})
}

// GET /ip-assets/:id/metadata
func (h *IPAssetHandler) GetMetadata(c *gin.Context) {
	id, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}

	metadata, err := h.metadataService.GetAssetMetadata(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"metadata": metadata,
	})
}

// POST /ip-assets/:id/transfer
func (h *IPAssetHandler) TransferIP(c *gin.Context) {
	id, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.TransferIPRequest
	if !bindJSON(c, &req) {
		return
	}

	transfer, err := h.transferService.TransferIP(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyIPAssetTransferred),
		"transfer": transfer,
	})
}

// GET /ip-assets/:id/transferable
func (h *IPAssetHandler) CanTransfer(c *gin.Context) {
	id, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}

	check, err := h.transferService.CanTransfer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, check)
}

// GET /ip-assets/:id/transfers
func (h *IPAssetHandler) GetTransferHistory(c *gin.Context) {
	id, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}

	transfers, err := h.transferService.TransferHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"transfers": transfers,
	})
}
