package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RegisterResult is the output of the register command.
type RegisterResult struct {
	WalletID  string `json:"wallet_id"`
	UserID    string `json:"user_id"`
	PublicKey string `json:"public_key"`
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register the wallet key and obtain new tokens",
		Long: `Run the key registration handshake with the wallet service.

The wallet proves possession of its private key, receives a new token pair
and, when a token database is configured, stores it for later runs. Any
previously held tokens are replaced.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(rootOpts, cmd)
		},
	}
}

func runRegister(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	a, err := opts.openApp(cmd, f)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	registered, err := a.Client().Register(cmd.Context())
	if err != nil {
		return f.Fail("registration failed", err)
	}

	result := RegisterResult{
		WalletID:  registered.WalletID,
		UserID:    registered.UserID,
		PublicKey: a.Client().PublicKey(),
	}
	return f.Success(result,
		fmt.Sprintf("✓ Registered wallet %s", result.WalletID),
		fmt.Sprintf("  user:       %s", result.UserID),
		fmt.Sprintf("  public key: %s", result.PublicKey),
	)
}
