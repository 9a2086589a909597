package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/internal/walletctl/app"
)

// NewBadgesCommand creates the badges command.
func NewBadgesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "badges [wallet-id]",
		Short: "List the badges of a wallet",
		Long: `List the badges received by a wallet.

The wallet id defaults to the one carried by the current access token.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.Application, f *OutputFormatter) error {
				walletID, err := walletIDFromArgs(a, args)
				if err != nil {
					return f.Fail("no wallet id", err)
				}

				badges, err := a.Client().Badges().My(cmd.Context(), walletID)
				if err != nil {
					return f.Fail("failed to list badges", err)
				}

				lines := []string{fmt.Sprintf("%d badge(s) for wallet %s", len(badges), walletID)}
				for _, badge := range badges {
					received := time.Unix(badge.ReceivedAt, 0).UTC().Format(time.RFC3339)
					lines = append(lines, fmt.Sprintf("  #%d %s (received %s)", badge.ID, badge.Name, received))
				}
				return f.Success(badges, lines...)
			})
		},
	}
}

// walletIDFromArgs returns args[0], or the wallet id of the access token.
func walletIDFromArgs(a *app.Application, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}

	claims, err := a.Client().TokenClaims()
	if err != nil {
		return "", err
	}
	if claims.WalletID == "" {
		return "", fmt.Errorf("access token carries no wallet id, pass one explicitly")
	}
	return claims.WalletID, nil
}
