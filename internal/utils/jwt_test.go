// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	addr := "0x1111111111111111111111111111111111111111"

	token, err := GenerateJWT(addr, "operator", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, addr, claims.Address)
	assert.Equal(t, "operator", claims.Role)
	assert.Equal(t, jwtIssuer, claims.Issuer)
}

func TestJWTRejectsForeignSecretAndBadAddress(t *testing.T) {
	SetJWTSecret("one")
	token, err := GenerateJWT("0x1111111111111111111111111111111111111111", "user", 1)
	require.NoError(t, err)

	SetJWTSecret("two")
	_, err = ValidateJWT(token)
	assert.Error(t, err)

	bad, err := GenerateJWT("alice", "user", 1)
	require.NoError(t, err)
	_, err = ValidateJWT(bad)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT("0x1111111111111111111111111111111111111111", "user", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}
