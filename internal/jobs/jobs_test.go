// internal/jobs/jobs_test.go
package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/jobs"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
)

type JobsTestSuite struct {
	suite.Suite
	ctx         context.Context
	env         *testutil.Env
	ips         *services.IPService
	licenses    *services.LicenseService
	arbitrators *services.ArbitratorService
	runner      *jobs.Runner
}

func (suite *JobsTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.env = testutil.NewEnv(suite.T())
	cfg := config.LedgerConfig{
		OperatorAddress:      testutil.Operator,
		MinArbitratorStake:   100,
		DecisionWindow:       time.Hour,
		ResolutionCooldown:   time.Minute,
		NoArbitratorDeadline: time.Hour,
		MaxUpholdQuorum:      3,
		ReputationReward:     10,
	}
	ledger := suite.env.Ledger
	suite.ips = services.NewIPService(ledger)
	suite.licenses = services.NewLicenseService(ledger)
	suite.arbitrators = services.NewArbitratorService(ledger, cfg)
	suite.runner = jobs.NewRunner(
		config.SchedulerConfig{LicenseSweepInterval: 3600, ReconcileInterval: 3600},
		suite.licenses,
		suite.arbitrators,
		services.NewDisputeService(ledger, cfg),
		services.NewAdminService(ledger, suite.env.DB),
	)
}

func (suite *JobsTestSuite) TestExpireLicenses() {
	asset, err := suite.ips.RegisterIP(suite.ctx, services.Caller{Address: testutil.Alice}, &services.RegisterIPRequest{ContentHash: "bafy-job"})
	require.NoError(suite.T(), err)
	license, err := suite.licenses.MintLicense(suite.ctx, services.Caller{Address: testutil.Alice}, asset.ID, &services.MintLicenseRequest{
		Licensee:        testutil.Bob,
		RoyaltyShareBp:  500,
		DurationSeconds: 60,
	})
	require.NoError(suite.T(), err)

	suite.runner.ExpireLicenses()
	got, err := suite.licenses.GetLicense(suite.ctx, license.ID)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), got.IsActive)

	suite.env.Clock.Advance(time.Minute)
	suite.runner.ExpireLicenses()
	got, err = suite.licenses.GetLicense(suite.ctx, license.ID)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), got.IsActive)
}

func (suite *JobsTestSuite) TestReconcileArbitrators() {
	_, err := suite.arbitrators.RegisterArbitrator(suite.ctx, services.Caller{Address: testutil.Arb1}, 100)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.env.DB.Model(&models.Arbitrator{}).
		Where("address = ?", testutil.Arb1).Update("active_disputes", 3).Error)

	suite.runner.ReconcileArbitrators()

	counts, err := suite.arbitrators.ActiveDisputeCount(suite.ctx, testutil.Arb1)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), counts.Cached)
	assert.Zero(suite.T(), counts.Recomputed)
}

func (suite *JobsTestSuite) TestStartStop() {
	suite.runner.RefreshGauges()
	require.NoError(suite.T(), suite.runner.Start())
	suite.runner.Stop()
}

func TestJobsSuite(t *testing.T) {
	suite.Run(t, new(JobsTestSuite))
}
