// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

const sqliteBusyTimeoutMs = 5000

// DSN renders the connection string for the configured driver. Postgres
// sessions run in UTC so ledger timestamps round-trip unchanged.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.sqliteDSN()
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Database, sslMode,
	)
}

// sqliteDSN waits on a locked database file instead of failing at once; the
// audit writer shares the single connection with ledger transactions.
func (d *DatabaseConfig) sqliteDSN() string {
	if strings.Contains(d.SQLitePath, "?") {
		return d.SQLitePath
	}
	return fmt.Sprintf("%s?_busy_timeout=%d", d.SQLitePath, sqliteBusyTimeoutMs)
}
