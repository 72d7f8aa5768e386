// doc.go

// Package sear is an IP ownership and licensing ledger: royalty
// distribution, arbitrator staking, dispute arbitration and ownership
// transfer, served over HTTP.
//
// Layout:
//
//	cmd/server          cobra entrypoint (serve, migrate, token)
//	internal/config     environment configuration
//	internal/database   gorm connection and the single-writer Ledger
//	internal/models     persisted ledger state
//	internal/services   ledger operations
//	internal/handlers   gin handlers
//	internal/middleware auth, i18n, logging, rate limiting
//	internal/router     route table and service wiring
//	internal/events     ledger event publishers (log, kafka)
//	internal/jobs       gocron housekeeping
//	internal/metrics    prometheus collectors
//	internal/cache      bigcache wrapper
//	internal/i18n       message translations
//	internal/utils      responses, pagination, validation, addresses, JWT
package sear
