// internal/services/caller.go
package services

import (
	"github.com/Afoxcute/sear/internal/utils"
)

// Caller is the authenticated identity a request acts as.
type Caller struct {
	Address  string
	Operator bool
}

func (c Caller) requireOperator(action string) error {
	if !c.Operator {
		return unauthorized(CodeNotOperator, "only the ledger operator may %s", action)
	}
	return nil
}

// normalizeAccount canonicalizes an account argument or reports it as invalid input.
func normalizeAccount(field, addr string) (string, error) {
	normalized, err := utils.NormalizeAddress(addr)
	if err != nil {
		return "", invalidInput(CodeInvalidAddress, "%s: %v", field, err).With("field", field)
	}
	return normalized, nil
}

// validateRequest runs struct validation and reports failures as invalid input.
func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return invalidInput(CodeInvalidArgument, "validation failed: %v", err).
			With("fields", utils.GetValidationErrors(err))
	}
	return nil
}
