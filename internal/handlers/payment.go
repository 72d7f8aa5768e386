// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req services.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.ConfirmExternalPayment(c.Request.Context(), req.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}

	key := i18n.KeyPaymentApplied
	if result.AlreadyApplied {
		key = i18n.KeyPaymentReplayed
	}
	utils.SuccessResponse(c, gin.H{
		"message":         i18n.T(utils.GetLangFromContext(c), key),
		"payment":         result.Payment,
		"breakdown":       result.Breakdown,
		"already_applied": result.AlreadyApplied,
	})
}
