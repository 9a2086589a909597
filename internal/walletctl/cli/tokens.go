package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/internal/walletctl/app"
)

// TokenStatus describes the held access token. Tokens themselves are never printed.
type TokenStatus struct {
	WalletID  string    `json:"wallet_id"`
	UserID    string    `json:"user_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	ExpiresIn string    `json:"expires_in"`
	Restored  bool      `json:"restored"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand(rootOpts *RootOptions) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Show the state of the held access token",
		Long: `Show the wallet and expiry of the held access token, registering first when
no token is held. With --forget the held tokens are dropped from the token
database instead; the next command registers again.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if forget {
				return runForgetTokens(rootOpts, cmd)
			}
			return rootOpts.withApp(cmd, func(a *app.Application, f *OutputFormatter) error {
				claims, err := a.Client().TokenClaims()
				if err != nil {
					return f.Fail("failed to read access token", err)
				}

				status := TokenStatus{
					WalletID:  claims.WalletID,
					UserID:    claims.UserID,
					ExpiresAt: claims.Expiry(),
					ExpiresIn: a.Client().TokenExpiresIn(time.Now()).Round(time.Second).String(),
					Restored:  a.Restored(),
				}
				return f.Success(status,
					fmt.Sprintf("wallet:     %s", status.WalletID),
					fmt.Sprintf("expires in: %s", status.ExpiresIn),
					fmt.Sprintf("restored:   %t", status.Restored),
				)
			})
		},
	}

	cmd.Flags().BoolVar(&forget, "forget", false, "drop the held tokens instead of showing them")

	return cmd
}

// ForgetResult is the output of tokens --forget.
type ForgetResult struct {
	Forgotten bool `json:"forgotten"`
	HadTokens bool `json:"had_tokens"`
}

func runForgetTokens(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	a, err := opts.openApp(cmd, f)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	result := ForgetResult{Forgotten: true, HadTokens: a.Restored()}
	a.Forget(cmd.Context())

	return f.Success(result, "✓ Forgot held tokens")
}
