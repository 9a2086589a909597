package cli

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/pkg/cryptox"
)

// KeyPair is the output of the keygen command.
type KeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new wallet key",
		Long: `Generate a new Ed25519 wallet key. The private key is printed as the hex
seed expected by WALLET_PRIVATE_KEY. Nothing is sent to the service.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			seed, pub, err := cryptox.GenerateEd25519Seed()
			if err != nil {
				return f.Fail("failed to generate key", err)
			}

			return f.Success(KeyPair{PrivateKey: seed, PublicKey: pub},
				"WALLET_PRIVATE_KEY="+seed,
				"# public key: "+pub,
			)
		},
	}
}
