// cmd/server/token.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Afoxcute/sear/internal/config"
	"github.com/Afoxcute/sear/internal/models"
	"github.com/Afoxcute/sear/internal/utils"
)

// newTokenCommand signs a bearer token for local development. In production
// tokens come from the identity provider sharing JWT_SECRET.
func newTokenCommand(cfg func() *config.Config) *cobra.Command {
	var operator bool
	var ttlHours int

	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Sign a development bearer token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if c.Environment == "production" {
				return fmt.Errorf("refusing to sign tokens in production")
			}

			address, err := utils.NormalizeAddress(args[0])
			if err != nil {
				return err
			}
			role := models.RoleUser
			if operator {
				role = models.RoleOperator
			}
			if ttlHours <= 0 {
				ttlHours = c.JWT.AccessTokenTTL
			}

			utils.SetJWTSecret(c.JWT.SecretKey)
			token, err := utils.GenerateJWT(address, string(role), ttlHours)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().BoolVar(&operator, "operator", false, "Sign the token with the operator role")
	cmd.Flags().IntVar(&ttlHours, "ttl", 0, "Token lifetime in hours (defaults to JWT_ACCESS_TTL)")
	return cmd
}
