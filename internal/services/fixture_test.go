// internal/services/fixture_test.go
package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
)

const testStake int64 = 1000

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		OperatorAddress:      testutil.Operator,
		MinArbitratorStake:   testStake,
		DecisionWindow:       7 * 24 * time.Hour,
		ResolutionCooldown:   24 * time.Hour,
		NoArbitratorDeadline: 7 * 24 * time.Hour,
		MaxUpholdQuorum:      3,
		ReputationReward:     10,
	}
}

// ledgerSuite wires every service against a fresh sqlite ledger per test.
type ledgerSuite struct {
	suite.Suite
	ctx context.Context
	env *testutil.Env
	cfg config.LedgerConfig

	ips         *services.IPService
	licenses    *services.LicenseService
	royalties   *services.RoyaltyService
	arbitrators *services.ArbitratorService
	disputes    *services.DisputeService
	transfers   *services.TransferService
	admin       *services.AdminService
}

func (suite *ledgerSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.env = testutil.NewEnv(suite.T())
	suite.cfg = testLedgerConfig()

	ledger := suite.env.Ledger
	suite.ips = services.NewIPService(ledger)
	suite.licenses = services.NewLicenseService(ledger)
	suite.royalties = services.NewRoyaltyService(ledger)
	suite.arbitrators = services.NewArbitratorService(ledger, suite.cfg)
	suite.disputes = services.NewDisputeService(ledger, suite.cfg)
	suite.transfers = services.NewTransferService(ledger)
	suite.admin = services.NewAdminService(ledger, suite.env.DB)
}

func as(address string) services.Caller {
	return services.Caller{Address: address}
}

func operator() services.Caller {
	return services.Caller{Address: testutil.Operator, Operator: true}
}

func (suite *ledgerSuite) registerIP(owner string) *models.IPAsset {
	asset, err := suite.ips.RegisterIP(suite.ctx, as(owner), &services.RegisterIPRequest{
		ContentHash: "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
		MetadataRef: "assets/track.json",
	})
	require.NoError(suite.T(), err)
	return asset
}

func (suite *ledgerSuite) mint(asset *models.IPAsset, licensee string, bp int64, duration time.Duration) *models.License {
	license, err := suite.licenses.MintLicense(suite.ctx, as(asset.Owner), asset.ID, &services.MintLicenseRequest{
		Licensee:        licensee,
		RoyaltyShareBp:  bp,
		DurationSeconds: int64(duration / time.Second),
	})
	require.NoError(suite.T(), err)
	return license
}

func (suite *ledgerSuite) registerArbitrators(addresses ...string) {
	for _, addr := range addresses {
		_, err := suite.arbitrators.RegisterArbitrator(suite.ctx, as(addr), testStake)
		require.NoError(suite.T(), err)
	}
}

func (suite *ledgerSuite) raise(asset *models.IPAsset, disputer string) *models.Dispute {
	dispute, err := suite.disputes.RaiseDispute(suite.ctx, as(disputer), &services.RaiseDisputeRequest{
		IPAssetID: asset.ID,
		Reason:    "prior art published in 2019",
	})
	require.NoError(suite.T(), err)
	return dispute
}

func (suite *ledgerSuite) assign(dispute *models.Dispute, arbitrators ...string) *models.Arbitration {
	arbitration, err := suite.disputes.AssignArbitrators(suite.ctx, operator(), dispute.ID, &services.AssignArbitratorsRequest{
		Arbitrators: arbitrators,
	})
	require.NoError(suite.T(), err)
	return arbitration
}

func (suite *ledgerSuite) vote(dispute *models.Dispute, arbitrator string, uphold bool) *models.Arbitration {
	arbitration, err := suite.disputes.SubmitDecision(suite.ctx, as(arbitrator), dispute.ID, &services.SubmitDecisionRequest{
		Uphold:    uphold,
		Rationale: "reviewed evidence",
	})
	require.NoError(suite.T(), err)
	return arbitration
}

func (suite *ledgerSuite) arbitrator(address string) *models.Arbitrator {
	arb, err := suite.arbitrators.GetArbitrator(suite.ctx, address)
	require.NoError(suite.T(), err)
	return arb
}

func (suite *ledgerSuite) asset(id uint64) *models.IPAsset {
	asset, err := suite.ips.GetIPAsset(suite.ctx, id)
	require.NoError(suite.T(), err)
	return asset
}

func (suite *ledgerSuite) version() uint64 {
	v, err := suite.env.Ledger.Version(suite.ctx)
	require.NoError(suite.T(), err)
	return v
}

// requireCode asserts err is a ledger error of the given kind and code.
func (suite *ledgerSuite) requireCode(err error, kind error, code string) {
	require.Error(suite.T(), err)
	require.ErrorIs(suite.T(), err, kind)
	require.Equal(suite.T(), code, services.CodeOf(err), err.Error())
}
