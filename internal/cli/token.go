package cli

import (
	"fmt"
	"time"

	"github.com/example/catalog-aggregator/internal/auth"
	"github.com/spf13/cobra"
)

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Auth.JWTSecret) < auth.MinSecretLength {
				return fmt.Errorf("auth.jwt_secret must be at least %d characters long", auth.MinSecretLength)
			}
			if !auth.KnownRole(role) {
				return fmt.Errorf("unknown --role %q: want %s or %s", role, auth.RoleAdmin, auth.RoleOperator)
			}
			if ttl <= 0 {
				ttl = a.cfg.Auth.TokenTTL
			}

			token, expiresAt, err := auth.NewJWTService(a.cfg.Auth.JWTSecret, ttl).GenerateAccessToken(subject, role)
			if err != nil {
				return err
			}
			a.log.Info("token issued", "subject", subject, "role", role, "expires_at", expiresAt.Format(time.RFC3339))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	return cmd
}
