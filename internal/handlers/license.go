// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /ip-assets/:id/licenses
func (h *LicenseHandler) MintLicense(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.MintLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	license, err := h.licenseService.MintLicense(c.Request.Context(), caller, assetID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyLicenseMinted),
		"license": license,
	})
}

// GET /ip-assets/:id/licenses
func (h *LicenseHandler) GetAssetLicenses(c *gin.Context) {
	assetID, ok := parseID(c, "id", "IP asset")
	if !ok {
		return
	}
	h.search(c, services.LicenseSearchParams{IPAssetID: assetID})
}

// GET /licenses
func (h *LicenseHandler) GetLicenses(c *gin.Context) {
	h.search(c, services.LicenseSearchParams{Licensee: c.Query("licensee")})
}

func (h *LicenseHandler) search(c *gin.Context, searchParams services.LicenseSearchParams) {
	params := utils.GetPaginationParams(c)
	searchParams.PaginationParams = params
	if active := queryBool(c, "active_only"); active != nil {
		searchParams.ActiveOnly = *active
	}

	licenses, total, err := h.licenseService.SearchLicenses(c.Request.Context(), searchParams)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(licenses, total, params))
}

// GET /licenses/:id
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	id, ok := parseID(c, "id", "license")
	if !ok {
		return
	}

	license, err := h.licenseService.GetLicense(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"license": license,
	})
}

// PUT /licenses/:id/revoke
func (h *LicenseHandler) RevokeLicense(c *gin.Context) {
	id, ok := parseID(c, "id", "license")
	if !ok {
		return
	}
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	license, err := h.licenseService.RevokeLicense(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyLicenseRevoked),
		"license": license,
	})
}

// POST /admin/licenses/expire
func (h *LicenseHandler) ExpireLicenses(c *gin.Context) {
	expired, err := h.licenseService.ExpireLicenses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyLicensesExpired),
		"expired": expired,
	})
}
