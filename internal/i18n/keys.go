// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired       = "auth.required"
	KeyAuthInvalidToken   = "auth.invalid_token"
	KeyAuthTokenExpired   = "auth.token_expired"
	KeyAuthOperatorDenied = "auth.operator_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidID         = "validation.invalid_id"

	// IP Assets
	KeyIPAssetRegistered  = "ip_asset.registered"
	KeyIPAssetNotFound    = "ip_asset.not_found"
	KeyIPAssetTransferred = "ip_asset.transferred"

	// Licenses
	KeyLicenseMinted   = "license.minted"
	KeyLicenseRevoked  = "license.revoked"
	KeyLicenseNotFound = "license.not_found"
	KeyLicensesExpired = "license.expired"

	// Royalties
	KeyRevenuePaid     = "royalty.revenue_paid"
	KeyRoyaltyClaimed  = "royalty.claimed"
	KeyNothingToClaim  = "royalty.nothing_to_claim"
	KeyPaymentApplied  = "payment.applied"
	KeyPaymentReplayed = "payment.replayed"

	// Disputes
	KeyDisputeRaised       = "dispute.raised"
	KeyDisputeNotFound     = "dispute.not_found"
	KeyArbitratorsAssigned = "dispute.arbitrators_assigned"
	KeyDecisionSubmitted   = "dispute.decision_submitted"
	KeyDisputeResolved     = "dispute.resolved"

	// Arbitrators
	KeyArbitratorRegistered = "arbitrator.registered"
	KeyArbitratorUnstaked   = "arbitrator.unstaked"
	KeyArbitratorNotFound   = "arbitrator.not_found"

	// Admin
	KeySettingsUpdated = "admin.settings_updated"

	// Errors by ledger error kind
	KeyErrNotFound           = "error.not_found"
	KeyErrInvalidInput       = "error.invalid_input"
	KeyErrPreconditionFailed = "error.precondition_failed"
	KeyErrUnauthorized       = "error.unauthorized"
	KeyErrInternal           = "error.internal"
	KeyErrRateLimited        = "error.rate_limited"
)
