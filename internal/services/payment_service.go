// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/metrics"
	"github.com/Afoxcute/sear/internal/models"
)

const (
	intentMetaAssetID = "ip_asset_id"
	intentMetaPayer   = "payer"

	IntentStatusSucceeded = "succeeded"
)

// GatewayIntent is the part of an external payment the ledger cares about.
// Amount is in the ledger's smallest unit.
type GatewayIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// PaymentGateway funds revenue payments from outside the ledger.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*GatewayIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*GatewayIntent, error)
}

// StripeGateway talks to Stripe PaymentIntents.
type StripeGateway struct {
	client *paymentintent.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		client: &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*GatewayIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*GatewayIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.client.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *GatewayIntent {
	return &GatewayIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

// PaymentService applies revenue that was collected through the gateway.
// Each intent credits the ledger at most once.
type PaymentService struct {
	ledger   *database.Ledger
	gateway  PaymentGateway
	currency string
}

type CreatePaymentIntentRequest struct {
	IPAssetID uint64 `json:"ip_asset_id" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type ExternalPaymentResult struct {
	*PaymentReceipt
	AlreadyApplied bool `json:"already_applied"`
}

var errIntentApplied = errors.New("payment intent already applied")

// NewPaymentService wires the gateway. A nil gateway disables external
// funding; direct payments keep working.
func NewPaymentService(ledger *database.Ledger, gateway PaymentGateway, cfg config.PaymentConfig) *PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		ledger:   ledger,
		gateway:  gateway,
		currency: currency,
	}
}

func (s *PaymentService) requireGateway() error {
	if s.gateway == nil {
		return preconditionFailed(CodePaymentsDisabled, "external payments are not configured")
	}
	return nil
}

func (s *PaymentService) CreatePaymentIntent(ctx context.Context, caller Caller, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, invalidInput(CodeInvalidAmount, "payment amount must be positive")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	err := s.ledger.View(ctx, func(txn *database.Txn) error {
		_, err := loadAsset(txn.DB, req.IPAssetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreateIntent(ctx, req.Amount, s.currency, map[string]string{
		intentMetaAssetID: strconv.FormatUint(req.IPAssetID, 10),
		intentMetaPayer:   caller.Address,
	})
	if err != nil {
		return nil, err
	}

	return &PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentID:    intent.ID,
		Status:       intent.Status,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

// ConfirmExternalPayment applies a succeeded intent as revenue for the asset
// named in its metadata. Confirming the same intent again returns the
// original payment without touching balances.
func (s *PaymentService) ConfirmExternalPayment(ctx context.Context, intentID string) (*ExternalPaymentResult, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	if intentID == "" {
		return nil, invalidInput(CodeInvalidArgument, "payment intent id is required")
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != IntentStatusSucceeded {
		return nil, preconditionFailed(CodePaymentNotSucceeded, "payment intent %s has status %s", intent.ID, intent.Status).
			With("status", intent.Status)
	}
	ipAssetID, err := strconv.ParseUint(intent.Metadata[intentMetaAssetID], 10, 64)
	if err != nil {
		return nil, invalidInput(CodeInvalidArgument, "payment intent %s does not name an IP asset", intent.ID)
	}
	payer := intent.Metadata[intentMetaPayer]
	if intent.Amount <= 0 {
		return nil, invalidInput(CodeInvalidAmount, "payment intent %s has no amount", intent.ID)
	}

	reference := intent.ID
	result := &ExternalPaymentResult{}
	err = s.ledger.Update(ctx, func(txn *database.Txn) error {
		var existing models.RevenuePayment
		err := txn.DB.Where("payment_reference = ?", reference).First(&existing).Error
		switch {
		case err == nil:
			result.PaymentReceipt = &PaymentReceipt{Payment: &existing}
			result.AlreadyApplied = true
			// roll back so a replay does not bump the ledger version
			return errIntentApplied
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to look up payment reference: %w", err)
		}

		receipt, err := applyPaymentTx(txn, payer, ipAssetID, intent.Amount, paymentSource{
			kind:      models.PaymentSourceStripe,
			reference: &reference,
		})
		if err != nil {
			return err
		}
		result.PaymentReceipt = receipt
		return nil
	})
	if errors.Is(err, errIntentApplied) {
		logrus.WithField("payment_intent_id", reference).Info("Payment intent already applied")
		return result, nil
	}
	metrics.Operation("confirm_external_payment", err)
	if err != nil {
		return nil, err
	}

	b := result.Breakdown
	metrics.RevenueDistributed(b.PlatformFee, b.LicenseTotal, b.OwnerAmount)
	logrus.WithFields(logrus.Fields{
		"payment_intent_id": reference,
		"ip_asset_id":       ipAssetID,
		"amount":            intent.Amount,
		"payment_id":        result.Payment.ID,
	}).Info("External payment applied")
	return result, nil
}
