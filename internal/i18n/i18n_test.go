// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Dispute raised", T("en", KeyDisputeRaised))
	assert.Equal(t, "爭議已提出", T("zh_TW", KeyDisputeRaised))
	assert.Equal(t, "Invalid dispute id", T("en", KeyInvalidID, "dispute"))

	// unknown language falls back, unknown key echoes
	assert.Equal(t, "License minted", T("fr", KeyLicenseMinted))
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))
	assert.ElementsMatch(t, []string{"en", "zh_TW"}, GetSupportedLanguages())
}
