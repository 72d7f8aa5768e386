// internal/services/transfer_service_test.go
package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
)

type TransferTestSuite struct {
	ledgerSuite
}

func (suite *TransferTestSuite) transfer(assetID uint64, from, to string) error {
	_, err := suite.transfers.TransferIP(suite.ctx, as(from), assetID, &services.TransferIPRequest{NewOwner: to})
	return err
}

func (suite *TransferTestSuite) TestTransferMovesOwnership() {
	asset := suite.registerIP(testutil.Alice)

	record, err := suite.transfers.TransferIP(suite.ctx, as(testutil.Alice), asset.ID, &services.TransferIPRequest{NewOwner: testutil.Bob})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), testutil.Alice, record.FromOwner)
	assert.Equal(suite.T(), testutil.Bob, record.ToOwner)
	assert.Equal(suite.T(), testutil.Bob, suite.asset(asset.ID).Owner)

	// the new owner receives the owner share of later payments
	receipt, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), testutil.Bob, receipt.Breakdown.Owner)

	history, err := suite.transfers.TransferHistory(suite.ctx, asset.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), history, 1)
	assert.Equal(suite.T(), record.ID, history[0].ID)
	assert.Len(suite.T(), suite.env.Publisher.OfType(events.IPTransferred), 1)
}

func (suite *TransferTestSuite) TestTransferRules() {
	asset := suite.registerIP(testutil.Alice)

	err := suite.transfer(asset.ID, testutil.Bob, testutil.Carol)
	suite.requireCode(err, services.ErrUnauthorized, services.CodeNotOwner)

	err = suite.transfer(asset.ID, testutil.Alice, testutil.Alice)
	suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidArgument)

	err = suite.transfer(asset.ID, testutil.Alice, "nobody")
	assert.ErrorIs(suite.T(), err, services.ErrInvalidInput)

	err = suite.transfer(999, testutil.Alice, testutil.Bob)
	suite.requireCode(err, services.ErrNotFound, services.CodeAssetNotFound)
}

func (suite *TransferTestSuite) TestOpenDisputeBlocksTransfer() {
	asset := suite.registerIP(testutil.Alice)
	first := suite.raise(asset, testutil.Bob)
	second := suite.raise(asset, testutil.Carol)
	before := suite.version()

	check, err := suite.transfers.CanTransfer(suite.ctx, asset.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), check.Transferable)
	assert.ElementsMatch(suite.T(), []uint64{first.ID, second.ID}, check.BlockingDisputeIDs)

	err = suite.transfer(asset.ID, testutil.Alice, testutil.Dave)
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodeActiveDisputes)
	var le *services.LedgerError
	require.ErrorAs(suite.T(), err, &le)
	assert.ElementsMatch(suite.T(), []uint64{first.ID, second.ID}, le.Details["dispute_ids"])
	assert.Equal(suite.T(), before, suite.version())
	assert.Equal(suite.T(), testutil.Alice, suite.asset(asset.ID).Owner)

	suite.env.Clock.Advance(suite.cfg.NoArbitratorDeadline)
	_, err = suite.disputes.ResolveWithoutArbitrators(suite.ctx, as(testutil.Bob), first.ID)
	require.NoError(suite.T(), err)

	// one open dispute is still enough to block
	err = suite.transfer(asset.ID, testutil.Alice, testutil.Dave)
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodeActiveDisputes)

	_, err = suite.disputes.ResolveWithoutArbitrators(suite.ctx, as(testutil.Carol), second.ID)
	require.NoError(suite.T(), err)

	check, err = suite.transfers.CanTransfer(suite.ctx, asset.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), check.Transferable)
	assert.Empty(suite.T(), check.BlockingDisputeIDs)

	require.NoError(suite.T(), suite.transfer(asset.ID, testutil.Alice, testutil.Dave))
	assert.Equal(suite.T(), testutil.Dave, suite.asset(asset.ID).Owner)
}

func (suite *TransferTestSuite) TestLicensesSurviveTransfer() {
	asset := suite.registerIP(testutil.Alice)
	suite.mint(asset, testutil.Carol, 1000, 24*time.Hour)
	require.NoError(suite.T(), suite.transfer(asset.ID, testutil.Alice, testutil.Bob))

	// only the new owner may mint now
	_, err := suite.licenses.MintLicense(suite.ctx, as(testutil.Alice), asset.ID, &services.MintLicenseRequest{
		Licensee: testutil.Dave, RoyaltyShareBp: 100, DurationSeconds: 60,
	})
	suite.requireCode(err, services.ErrUnauthorized, services.CodeNotOwner)

	moved := suite.asset(asset.ID)
	suite.mint(moved, testutil.Dave, 100, time.Hour)

	receipt, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000000)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), receipt.Breakdown.Licenses, 2)
	assert.Equal(suite.T(), int64(97500), receipt.Breakdown.Licenses[0].Amount)
}

func TestTransferSuite(t *testing.T) {
	suite.Run(t, new(TransferTestSuite))
}
