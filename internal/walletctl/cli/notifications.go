package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/internal/walletctl/app"
	"github.com/aussiebroadwan/walletsdk/pkg/walletsdk"
)

type notificationsOptions struct {
	walletID string
	kind     string
	since    time.Duration
	from     string
}

// NewNotificationsCommand creates the notifications command.
func NewNotificationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &notificationsOptions{}

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List wallet notifications",
		Long: `List the notifications of a wallet from the notifications service.

Requests are signed with the wallet key. Use --from for an RFC 3339 lower
bound or --since for a relative one.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.Application, f *OutputFormatter) error {
				return runNotifications(cmd, a, f, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.walletID, "wallet-id", "", "wallet id (default: from the access token)")
	cmd.Flags().StringVar(&opts.kind, "type", "", "notification type, e.g. message")
	cmd.Flags().StringVar(&opts.from, "from", "", "only notifications after this RFC 3339 timestamp")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "only notifications newer than this duration")

	return cmd
}

func runNotifications(cmd *cobra.Command, a *app.Application, f *OutputFormatter, opts *notificationsOptions) error {
	walletID, err := walletIDFromArgs(a, []string{opts.walletID})
	if err != nil {
		return f.Fail("no wallet id", err)
	}

	from := opts.from
	if from == "" && opts.since > 0 {
		from = time.Now().Add(-opts.since).UTC().Format(time.RFC3339)
	}
	if from != "" {
		if _, err := time.Parse(time.RFC3339, from); err != nil {
			_ = f.Error(ErrCodeConfig, fmt.Sprintf("invalid --from: %v", err), 0)
			return WrapExitError(ExitCommandError, "invalid --from", err)
		}
	}

	notifications, err := a.Client().Notifications().List(cmd.Context(), walletsdk.NotificationQuery{
		WalletID:      walletID,
		FromTimestamp: from,
		Type:          opts.kind,
	})
	if err != nil {
		return f.Fail("failed to list notifications", err)
	}

	lines := []string{fmt.Sprintf("%d notification(s)", len(notifications))}
	for _, n := range notifications {
		lines = append(lines, fmt.Sprintf("  %s [%s] %s", n.ID, n.Type, string(n.Payload)))
	}
	return f.Success(notifications, lines...)
}
