// internal/services/admin_service_test.go
package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
)

type AdminTestSuite struct {
	ledgerSuite
}

func (suite *AdminTestSuite) TestSettingsDefaults() {
	settings, err := suite.admin.GetSettings(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), testutil.DefaultPlatformFeeBp, settings.PlatformFeeBp)
	assert.Equal(suite.T(), "2.5", settings.PlatformFeePercent)
	assert.Equal(suite.T(), testutil.FeeCollector, settings.FeeCollector)
}

func (suite *AdminTestSuite) TestUpdateSettingsIsOperatorOnly() {
	bp := int64(100)
	_, err := suite.admin.UpdateSettings(suite.ctx, as(testutil.Alice), &services.UpdateSettingsRequest{PlatformFeeBp: &bp})
	suite.requireCode(err, services.ErrUnauthorized, services.CodeNotOperator)

	settings, err := suite.admin.GetSettings(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), testutil.DefaultPlatformFeeBp, settings.PlatformFeeBp)
}

func (suite *AdminTestSuite) TestUpdateSettingsValidation() {
	for _, bp := range []int64{-1, 1001} {
		v := bp
		_, err := suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{PlatformFeeBp: &v})
		suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidArgument)
	}

	_, err := suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{})
	suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidArgument)

	bad := "0xnothex"
	_, err = suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{FeeCollector: &bad})
	assert.ErrorIs(suite.T(), err, services.ErrInvalidInput)
}

func (suite *AdminTestSuite) TestUpdateSettings() {
	bp := int64(1000)
	collector := "0x52908400098527886E0F7030069857D2E4169EE7"
	settings, err := suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{
		PlatformFeeBp: &bp,
		FeeCollector:  &collector,
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1000), settings.PlatformFeeBp)
	assert.Equal(suite.T(), "10", settings.PlatformFeePercent)
	assert.Equal(suite.T(), "0x52908400098527886e0f7030069857d2e4169ee7", settings.FeeCollector)
	assert.Equal(suite.T(), suite.version(), settings.Version)
	assert.Len(suite.T(), suite.env.Publisher.OfType(events.SettingsChanged), 1)

	zero := int64(0)
	settings, err = suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{PlatformFeeBp: &zero})
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), settings.PlatformFeeBp)
	assert.Equal(suite.T(), "0x52908400098527886e0f7030069857d2e4169ee7", settings.FeeCollector)
}

func (suite *AdminTestSuite) TestDashboardStats() {
	suite.registerArbitrators(testutil.Arb1)
	asset := suite.registerIP(testutil.Alice)
	suite.registerIP(testutil.Bob)
	suite.mint(asset, testutil.Bob, 1000, time.Hour)
	suite.mint(asset, testutil.Carol, 1000, 48*time.Hour)
	suite.raise(asset, testutil.Dave)
	_, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000000)
	require.NoError(suite.T(), err)
	suite.env.Clock.Advance(time.Hour)
	_, err = suite.licenses.ExpireLicenses(suite.ctx)
	require.NoError(suite.T(), err)

	stats, err := suite.admin.GetDashboardStats(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), stats.TotalIPs)
	assert.Equal(suite.T(), int64(1), stats.DisputedIPs)
	assert.Equal(suite.T(), int64(2), stats.TotalLicenses)
	assert.Equal(suite.T(), int64(1), stats.ActiveLicenses)
	assert.Equal(suite.T(), int64(1), stats.OpenDisputes)
	assert.Zero(suite.T(), stats.ResolvedDisputes)
	assert.Equal(suite.T(), int64(1), stats.ActiveArbitrators)
	assert.Equal(suite.T(), int64(1000000), stats.TotalRevenue)
	assert.Equal(suite.T(), int64(25000), stats.TotalFeesCollected)
	assert.Equal(suite.T(), int64(97500*2), stats.UnclaimedRoyalties)
	assert.Equal(suite.T(), suite.version(), stats.LedgerVersion)
}

func (suite *AdminTestSuite) TestAuditLogs() {
	logs := []models.AuditLog{
		{Caller: testutil.Alice, Action: "POST /v1/ip-assets", ResourceType: "ip-assets", StatusCode: 201},
		{Caller: testutil.Bob, Action: "POST /v1/disputes", ResourceType: "disputes", StatusCode: 201},
		{Caller: testutil.Alice, Action: "POST /v1/disputes", ResourceType: "disputes", StatusCode: 409},
	}
	require.NoError(suite.T(), suite.env.DB.Create(&logs).Error)

	found, total, err := suite.admin.GetAuditLogs(suite.ctx, services.AuditLogFilter{Caller: testutil.Alice})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), found, 2)

	found, total, err = suite.admin.GetAuditLogs(suite.ctx, services.AuditLogFilter{ResourceType: "disputes"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
	// newest first
	assert.Equal(suite.T(), 409, found[0].StatusCode)
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminTestSuite))
}
