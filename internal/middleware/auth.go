// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Afoxcute/sear/internal/i18n"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

// bearerClaims extracts and validates the bearer token, reporting which
// translation key describes the failure.
func bearerClaims(c *gin.Context) (*utils.JWTClaims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, i18n.KeyAuthRequired
	}

	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, i18n.KeyAuthInvalidToken
	}

	claims, err := utils.ValidateJWT(parts[1])
	if err != nil {
		return nil, i18n.KeyAuthTokenExpired
	}
	return claims, ""
}

func setCaller(c *gin.Context, claims *utils.JWTClaims, operatorAddress string) {
	address, _ := utils.NormalizeAddress(claims.Address)
	operator := claims.Role == string(models.RoleOperator) ||
		(operatorAddress != "" && address == operatorAddress)

	c.Set(utils.ContextCallerAddress, address)
	c.Set(utils.ContextCallerRole, claims.Role)
	c.Set(utils.ContextOperator, operator)
}

// AuthRequired rejects requests without a valid bearer token. The account
// pinned as operatorAddress acts as operator whatever role its token carries.
func AuthRequired(operatorAddress string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, failure := bearerClaims(c)
		if claims == nil {
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", i18n.T(utils.GetLangFromContext(c), failure))
			return
		}

		setCaller(c, claims, operatorAddress)
		c.Next()
	}
}

func OperatorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, operator, ok := utils.GetCallerFromContext(c); !ok || !operator {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func OptionalAuth(operatorAddress string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set caller info in context only if the token is valid
		if claims, _ := bearerClaims(c); claims != nil {
			setCaller(c, claims, operatorAddress)
		}
		c.Next()
	}
}
