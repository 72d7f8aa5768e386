// internal/testutil/testutil.go
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/database"
	"github.com/Afoxcute/sear/internal/events"
)

const DefaultPlatformFeeBp int64 = 250

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// OpenDB opens a migrated sqlite database in a temp dir with the ledger state seeded.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Initialize(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel:   "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.SeedLedgerState(db, DefaultPlatformFeeBp, FeeCollector))

	t.Cleanup(func() { database.Close(db) })
	return db
}

// Env bundles a ledger with the fakes tests drive it through.
type Env struct {
	DB        *gorm.DB
	Ledger    *database.Ledger
	Clock     *FakeClock
	Publisher *events.MemoryPublisher
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	db := OpenDB(t)
	clock := NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	pub := events.NewMemoryPublisher()
	return &Env{
		DB:        db,
		Ledger:    database.NewLedger(db, pub, clock.Now),
		Clock:     clock,
		Publisher: pub,
	}
}

// Addresses used across tests, already in lower-case canonical form.
const (
	Operator     = "0x00000000000000000000000000000000000000aa"
	FeeCollector = "0x00000000000000000000000000000000000000fe"
	Alice        = "0x1111111111111111111111111111111111111111"
	Bob          = "0x2222222222222222222222222222222222222222"
	Carol        = "0x3333333333333333333333333333333333333333"
	Dave         = "0x4444444444444444444444444444444444444444"
	Arb1         = "0xa1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1"
	Arb2         = "0xa2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2a2"
	Arb3         = "0xa3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3"
)
