// internal/database/ledger_test.go
package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/testutil"
)

func TestUpdateBumpsVersionAndPublishesAfterCommit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	err := env.Ledger.Update(ctx, func(txn *database.Txn) error {
		assert.Equal(t, uint64(1), txn.Version)
		asset := &models.IPAsset{Owner: testutil.Alice, ContentHash: "h", RegisteredAt: txn.Now, OwnerRoyaltyShareBp: 10000}
		if err := txn.DB.Create(asset).Error; err != nil {
			return err
		}
		txn.Emit(events.New(events.IPRegistered, map[string]interface{}{"ip_asset_id": asset.ID}))
		// nothing is published before commit
		assert.Empty(t, env.Publisher.Events())
		return nil
	})
	require.NoError(t, err)

	version, err := env.Ledger.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)

	published := env.Publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, uint64(1), published[0].LedgerVersion)
	assert.Equal(t, env.Clock.Now(), published[0].OccurredAt)
}

func TestFailedUpdateLeavesNoTrace(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := env.Ledger.Update(ctx, func(txn *database.Txn) error {
		asset := &models.IPAsset{Owner: testutil.Alice, ContentHash: "h", RegisteredAt: txn.Now, OwnerRoyaltyShareBp: 10000}
		if err := txn.DB.Create(asset).Error; err != nil {
			return err
		}
		txn.Emit(events.New(events.IPRegistered, nil))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, env.DB.Model(&models.IPAsset{}).Count(&count).Error)
	assert.Zero(t, count)

	version, err := env.Ledger.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.Empty(t, env.Publisher.Events())
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.Ledger.Update(ctx, func(txn *database.Txn) error {
				return nil
			}))
		}()
	}
	wg.Wait()

	version, err := env.Ledger.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), version)
}

func TestTxnNowFollowsClock(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Clock.Advance(36 * time.Hour)

	require.NoError(t, env.Ledger.View(context.Background(), func(txn *database.Txn) error {
		assert.Equal(t, env.Clock.Now(), txn.Now)
		assert.Zero(t, txn.Version)
		return nil
	}))
}

func TestSeedLedgerStateKeepsExistingRow(t *testing.T) {
	env := testutil.NewEnv(t)

	require.NoError(t, database.SeedLedgerState(env.DB, 999, testutil.Bob))

	var state models.LedgerState
	require.NoError(t, env.DB.First(&state, models.LedgerStateID).Error)
	assert.Equal(t, testutil.DefaultPlatformFeeBp, state.PlatformFeeBp)
	assert.Equal(t, testutil.FeeCollector, state.FeeCollector)
}

// stallingPublisher blocks every publish until released.
type stallingPublisher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (p *stallingPublisher) Publish(_ context.Context, _ ...events.Event) error {
	p.once.Do(func() { close(p.started) })
	<-p.release
	return nil
}

func (p *stallingPublisher) Close() error { return nil }

func TestSlowPublisherDoesNotHoldTheLedger(t *testing.T) {
	pub := &stallingPublisher{started: make(chan struct{}), release: make(chan struct{})}
	ledger := database.NewLedger(testutil.OpenDB(t), pub, nil)
	ctx := context.Background()

	published := make(chan error, 1)
	go func() {
		published <- ledger.Update(ctx, func(txn *database.Txn) error {
			txn.Emit(events.New(events.IPRegistered, nil))
			return nil
		})
	}()

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("update never reached the publisher")
	}

	// the first update is committed but still publishing
	unblocked := make(chan struct{})
	go func() {
		defer close(unblocked)
		version, err := ledger.Version(ctx)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), version)
		assert.NoError(t, ledger.Update(ctx, func(*database.Txn) error { return nil }))
	}()

	select {
	case <-unblocked:
	case <-time.After(2 * time.Second):
		t.Fatal("ledger stayed locked while events were being published")
	}

	close(pub.release)
	require.NoError(t, <-published)

	version, err := ledger.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
}
