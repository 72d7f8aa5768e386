// internal/services/royalty_service_test.go
package services_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/services"
	"github.com/Afoxcute/sear/internal/testutil"
	"github.com/Afoxcute/sear/internal/utils"
)

type RoyaltyTestSuite struct {
	ledgerSuite
}

func (suite *RoyaltyTestSuite) TestTenPercentLicenseSplit() {
	asset := suite.registerIP(testutil.Alice)
	license := suite.mint(asset, testutil.Bob, 1000, 30*24*time.Hour)

	receipt, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000000)
	require.NoError(suite.T(), err)

	b := receipt.Breakdown
	assert.Equal(suite.T(), int64(1000000), b.Total)
	assert.Equal(suite.T(), int64(25000), b.PlatformFee)
	assert.Equal(suite.T(), int64(975000), b.Remainder)
	require.Len(suite.T(), b.Licenses, 1)
	assert.Equal(suite.T(), license.ID, b.Licenses[0].LicenseID)
	assert.Equal(suite.T(), int64(97500), b.Licenses[0].Amount)
	assert.Equal(suite.T(), int64(877500), b.OwnerAmount)
	assert.Equal(suite.T(), testutil.Alice, b.Owner)

	info, err := suite.royalties.GetRoyaltyInfo(suite.ctx, asset.ID, testutil.Bob)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(97500), info.Claimable)
	assert.Equal(suite.T(), int64(97500), info.TotalAccrued)
	assert.Equal(suite.T(), int64(1000000), info.TotalRevenue)

	settings, err := suite.admin.GetSettings(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(25000), settings.TotalFeesCollected)

	assert.Equal(suite.T(), testutil.FeeCollector, receipt.Payment.FeeCollector)
	assert.Len(suite.T(), suite.env.Publisher.OfType(events.RevenuePaid), 1)
}

func (suite *RoyaltyTestSuite) TestBreakdownPreviewDoesNotMutate() {
	asset := suite.registerIP(testutil.Alice)
	suite.mint(asset, testutil.Bob, 2500, time.Hour)
	before := suite.version()

	b, err := suite.royalties.ComputeBreakdown(suite.ctx, asset.ID, 12345)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), b.Total, b.PlatformFee+b.LicenseTotal+b.OwnerAmount)

	assert.Equal(suite.T(), before, suite.version())
	assert.Equal(suite.T(), int64(0), suite.asset(asset.ID).TotalRevenue)
}

func (suite *RoyaltyTestSuite) TestRejectsNonPositiveAmounts() {
	asset := suite.registerIP(testutil.Alice)
	before := suite.version()

	for _, amount := range []int64{0, -1} {
		_, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, amount)
		suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidAmount)

		_, err = suite.royalties.ComputeBreakdown(suite.ctx, asset.ID, amount)
		suite.requireCode(err, services.ErrInvalidInput, services.CodeInvalidAmount)
	}
	assert.Equal(suite.T(), before, suite.version())
}

func (suite *RoyaltyTestSuite) TestUnknownAssetMutatesNothing() {
	before := suite.version()

	_, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), 999, 100)
	suite.requireCode(err, services.ErrNotFound, services.CodeAssetNotFound)

	assert.Equal(suite.T(), before, suite.version())
	payments, total, err := suite.royalties.ListPayments(suite.ctx, 999, utils.PaginationParams{})
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), payments)
	assert.Zero(suite.T(), total)
}

func (suite *RoyaltyTestSuite) TestClaimZeroesBalanceOnce() {
	asset := suite.registerIP(testutil.Alice)
	suite.mint(asset, testutil.Bob, 1000, time.Hour)
	_, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000000)
	require.NoError(suite.T(), err)

	claim, err := suite.royalties.ClaimRoyalties(suite.ctx, asset.ID, testutil.Bob)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(97500), claim.Amount)

	_, err = suite.royalties.ClaimRoyalties(suite.ctx, asset.ID, testutil.Bob)
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodeNothingToClaim)

	info, err := suite.royalties.GetRoyaltyInfo(suite.ctx, asset.ID, testutil.Bob)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), info.Claimable)
	assert.Equal(suite.T(), int64(97500), info.TotalAccrued)
	require.NotNil(suite.T(), info.LastClaimedAt)
}

func (suite *RoyaltyTestSuite) TestClaimWithoutBalance() {
	asset := suite.registerIP(testutil.Alice)

	_, err := suite.royalties.ClaimRoyalties(suite.ctx, asset.ID, testutil.Dave)
	suite.requireCode(err, services.ErrPreconditionFailed, services.CodeNothingToClaim)
}

func (suite *RoyaltyTestSuite) TestConcurrentPaymentsAndClaimsConserveUnits() {
	asset := suite.registerIP(testutil.Alice)
	suite.mint(asset, testutil.Bob, 3333, 24*time.Hour)

	const payments = 10
	var claimed int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < payments; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 10007)
			assert.NoError(suite.T(), err)
		}()
		go func() {
			defer wg.Done()
			res, err := suite.royalties.ClaimRoyalties(suite.ctx, asset.ID, testutil.Bob)
			if err == nil {
				mu.Lock()
				claimed += res.Amount
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	info, err := suite.royalties.GetRoyaltyInfo(suite.ctx, asset.ID, testutil.Bob)
	require.NoError(suite.T(), err)

	// fee 250, remainder 9757, license floor(9757 * 3333 / 10000)
	const perPayment int64 = 3252
	assert.Equal(suite.T(), perPayment*payments, info.TotalAccrued)
	assert.Equal(suite.T(), info.TotalAccrued, claimed+info.Claimable)
}

func (suite *RoyaltyTestSuite) TestExpiredAndRevokedLicensesEarnNothing() {
	asset := suite.registerIP(testutil.Alice)
	short := suite.mint(asset, testutil.Bob, 1000, time.Hour)
	revoked := suite.mint(asset, testutil.Carol, 2000, 48*time.Hour)
	kept := suite.mint(asset, testutil.Dave, 500, 48*time.Hour)

	_, err := suite.licenses.RevokeLicense(suite.ctx, as(testutil.Alice), revoked.ID)
	require.NoError(suite.T(), err)
	suite.env.Clock.Advance(time.Hour)

	receipt, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000000)
	require.NoError(suite.T(), err)

	require.Len(suite.T(), receipt.Breakdown.Licenses, 1)
	assert.Equal(suite.T(), kept.ID, receipt.Breakdown.Licenses[0].LicenseID)
	assert.Equal(suite.T(), int64(48750), receipt.Breakdown.Licenses[0].Amount)
	assert.Equal(suite.T(), int64(975000-48750), receipt.Breakdown.OwnerAmount)

	for _, lic := range []uint64{short.ID, revoked.ID} {
		l, err := suite.licenses.GetLicense(suite.ctx, lic)
		require.NoError(suite.T(), err)
		_, err = suite.royalties.ClaimRoyalties(suite.ctx, asset.ID, l.Licensee)
		suite.requireCode(err, services.ErrPreconditionFailed, services.CodeNothingToClaim)
	}
}

func (suite *RoyaltyTestSuite) TestFeeChangeAppliesToLaterPayments() {
	asset := suite.registerIP(testutil.Alice)
	bp := int64(500)
	_, err := suite.admin.UpdateSettings(suite.ctx, operator(), &services.UpdateSettingsRequest{PlatformFeeBp: &bp})
	require.NoError(suite.T(), err)

	receipt, err := suite.royalties.PayRevenue(suite.ctx, as(testutil.Carol), asset.ID, 1000)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(50), receipt.Breakdown.PlatformFee)
	assert.Equal(suite.T(), int64(500), receipt.Payment.PlatformFeeBp)
}

func TestRoyaltySuite(t *testing.T) {
	suite.Run(t, new(RoyaltyTestSuite))
}

func TestComputeBreakdownConservesUnits(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	asset := &models.IPAsset{BaseModel: models.BaseModel{ID: 7}, Owner: testutil.Alice}

	shares := [][]int64{{}, {1}, {10000}, {3333, 3333, 3334}, {1, 2, 3, 4, 9990}, {2500, 2500}}
	amounts := []int64{1, 2, 39, 40, 9999, 10001, 1000000, 123456789, math.MaxInt64 / 2}
	for _, fee := range []int64{0, 1, 250, 1000} {
		for _, set := range shares {
			licenses := make([]models.License, 0, len(set))
			for i, bp := range set {
				licenses = append(licenses, models.License{
					BaseModel:       models.BaseModel{ID: uint64(len(set) - i)},
					IPAssetID:       asset.ID,
					Licensee:        testutil.Bob,
					RoyaltyShareBp:  bp,
					DurationSeconds: 3600,
					StartedAt:       now,
					IsActive:        true,
				})
			}
			for _, amount := range amounts {
				b := services.ComputeBreakdown(asset, licenses, amount, fee, now)
				assert.Equal(t, amount, b.PlatformFee+b.Remainder)
				assert.Equal(t, b.Remainder, b.LicenseTotal+b.OwnerAmount)
				assert.GreaterOrEqual(t, b.OwnerAmount, int64(0))
				assert.LessOrEqual(t, b.PlatformFee, amount)
				for i := 1; i < len(b.Licenses); i++ {
					assert.Less(t, b.Licenses[i-1].LicenseID, b.Licenses[i].LicenseID)
				}
			}
		}
	}
}

func TestComputeBreakdownFloorsEachLicense(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	asset := &models.IPAsset{BaseModel: models.BaseModel{ID: 1}, Owner: testutil.Alice}
	licenses := []models.License{
		{BaseModel: models.BaseModel{ID: 2}, IPAssetID: 1, Licensee: testutil.Carol, RoyaltyShareBp: 3333, DurationSeconds: 60, StartedAt: now, IsActive: true},
		{BaseModel: models.BaseModel{ID: 1}, IPAssetID: 1, Licensee: testutil.Bob, RoyaltyShareBp: 3333, DurationSeconds: 60, StartedAt: now, IsActive: true},
	}

	b := services.ComputeBreakdown(asset, licenses, 100, 250, now)

	assert.Equal(t, int64(2), b.PlatformFee)
	assert.Equal(t, int64(98), b.Remainder)
	require.Len(t, b.Licenses, 2)
	assert.Equal(t, testutil.Bob, b.Licenses[0].Licensee)
	assert.Equal(t, int64(32), b.Licenses[0].Amount)
	assert.Equal(t, int64(32), b.Licenses[1].Amount)
	assert.Equal(t, int64(34), b.OwnerAmount)

	expired := services.ComputeBreakdown(asset, licenses, 100, 250, now.Add(time.Minute))
	assert.Empty(t, expired.Licenses)
	assert.Equal(t, int64(98), expired.OwnerAmount)
}
