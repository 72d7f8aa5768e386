// internal/services/payment_service_test.go
package services_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
)

// fakeGateway keeps intents in memory; tests flip their status by hand.
type fakeGateway struct {
	mu      sync.Mutex
	next    int
	intents map[string]*services.GatewayIntent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*services.GatewayIntent{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*services.GatewayIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	id := fmt.Sprintf("pi_test_%d", g.next)
	intent := &services.GatewayIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	g.intents[id] = intent
	copied := *intent
	return &copied, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (*services.GatewayIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent: %s", id)
	}
	copied := *intent
	return &copied, nil
}

func (g *fakeGateway) setStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[id].Status = status
}

type PaymentTestSuite struct {
	ledgerSuite
	gateway  *fakeGateway
	payments *services.PaymentService
}

func (suite *PaymentTestSuite) SetupTest() {
	suite.ledgerSuite.SetupTest()
	suite.gateway = newFakeGateway()
	suite.payments = services.NewPaymentService(suite.env.Ledger, suite.gateway, config.PaymentConfig{Currency: "usd"})
}

func (suite *PaymentTestSuite) TestIntentCarriesAssetAndPayer() {
	asset := suite.registerIP(testutil.Alice)

	resp, err := suite.payments.CreatePaymentIntent(suite.ctx, as(testutil.Carol), &services.CreatePaymentIntentRequest{
		IPAssetID: asset.ID,
		Amount:    5000,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "usd", resp.Currency)
	assert.NotEmpty(suite.T(), resp.ClientSecret)

	intent, err := suite.gateway.RetrieveIntent(suite.ctx, resp.PaymentID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), strconv.FormatUint(asset.ID, 10), intent.Metadata["ip_asset_id"])
	assert.Equal(suite.T(), testutil.Carol, intent.Metadata["payer"])

	_, err = suite.payments.CreatePaymentIntent(suite.ctx, as(testutil.Carol), &services.CreatePaymentIntentRequest{IPAssetID: 99, Amount: 5000})
	suite.requireCode(err, services.ErrNotFound, services.CodeAssetNotFound)

	_, err = suite.payments.CreatePaymentIntent(suite.ctx, as(testutil.Carol), &services.CreatePaymentIntentRequest{IPAssetID: asset.ID, Amount: -5})
	suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidAmount)
}

func (suite *PaymentTestSuite) TestConfirmAppliesOnce() {
	asset := suite.registerIP(testutil.Alice)
	suite.mint(asset, testutil.Bob, 1000, 24*time.Hour)

	resp, err := suite.payments.CreatePaymentIntent(suite.ctx, as(testutil.Carol), &services.CreatePaymentIntentRequest{
		IPAssetID: asset.ID,
		Amount:    1000000,
	})
	require.NoError(suite.T(), err)

	_, err = suite.payments.ConfirmExternalPayment(suite.ctx, resp.PaymentID)
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodePaymentNotSucceeded)

	suite.gateway.setStatus(resp.PaymentID, services.IntentStatusSucceeded)
	result, err := suite.payments.ConfirmExternalPayment(suite.ctx, resp.PaymentID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), result.AlreadyApplied)
	assert.Equal(suite.T(), models.PaymentSourceStripe, result.Payment.Source)
	require.NotNil(suite.T(), result.Payment.PaymentReference)
	assert.Equal(suite.T(), resp.PaymentID, *result.Payment.PaymentReference)
	assert.Equal(suite.T(), testutil.Carol, result.Payment.Payer)
	assert.Equal(suite.T(), int64(97500), result.Breakdown.LicenseTotal)
	version := suite.version()

	replay, err := suite.payments.ConfirmExternalPayment(suite.ctx, resp.PaymentID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), replay.AlreadyApplied)
	assert.Equal(suite.T(), result.Payment.ID, replay.Payment.ID)
	assert.Equal(suite.T(), version, suite.version())

	info, err := suite.royalties.GetRoyaltyInfo(suite.ctx, asset.ID, testutil.Bob)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(97500), info.Claimable)
	assert.Equal(suite.T(), int64(1000000), info.TotalRevenue)
}

func (suite *PaymentTestSuite) TestConfirmUnknownIntent() {
	_, err := suite.payments.ConfirmExternalPayment(suite.ctx, "pi_missing")
	assert.Error(suite.T(), err)

	_, err = suite.payments.ConfirmExternalPayment(suite.ctx, "")
	suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidArgument)
}

func (suite *PaymentTestSuite) TestWithoutGateway() {
	disabled := services.NewPaymentService(suite.env.Ledger, nil, config.PaymentConfig{})

	_, err := disabled.ConfirmExternalPayment(suite.ctx, "pi_1")
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodePaymentsDisabled)
	_, err = disabled.CreatePaymentIntent(suite.ctx, as(testutil.Carol), &services.CreatePaymentIntentRequest{IPAssetID: 1, Amount: 1})
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodePaymentsDisabled)
}

func TestPaymentSuite(t *testing.T) {
	suite.Run(t, new(PaymentTestSuite))
}
