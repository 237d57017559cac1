package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"erdiagram/internal/utils"
)

const envJWTSecret = "JWT_SECRET"

type tokenView struct {
	Token     string    `json:"token" yaml:"token"`
	Subject   string    `json:"subject" yaml:"subject"`
	ExpiresAt time.Time `json:"expiresAt" yaml:"expiresAt"`
}

// tokenCommand mints an API token locally from the server's signing secret.
func (a *app) tokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API bearer token",
		Long:  `token signs an API token with the secret in ` + envJWTSecret + `, the same secret the API server verifies tokens with.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv(envJWTSecret)
			if secret == "" {
				return errors.New(envJWTSecret + " is not set")
			}
			token, err := utils.IssueToken([]byte(secret), subject, ttl)
			if err != nil {
				return err
			}
			view := tokenView{Token: token, Subject: subject, ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second)}
			return a.render(view, writeLine(token))
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "erd-cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
