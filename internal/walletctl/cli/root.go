package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/internal/walletctl/app"
	"github.com/aussiebroadwan/walletsdk/pkg/slogx"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of walletctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "walletctl",
		Short: "walletctl - wallet service client",
		Long: `Register a wallet key with the wallet service and call its endpoints.

Tokens are refreshed (or the wallet registered again) automatically when the
service rejects them. Set WALLET_TOKEN_DB to keep tokens between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewBadgesCommand(opts))
	cmd.AddCommand(NewNotificationsCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewTokensCommand(opts))

	return cmd
}

func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openApp loads the configuration and starts the application. Logs go to
// stderr so JSON on stdout stays parseable.
func (opts *RootOptions) openApp(cmd *cobra.Command, f *OutputFormatter) (*app.Application, error) {
	cfg, err := app.LoadConfig(opts.ConfigPath)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), 0)
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	application, err := app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), 0)
		return nil, WrapExitError(ExitCommandError, "failed to start", err)
	}

	// Outbound calls of this command log with the command name attached.
	cmd.SetContext(slogx.WithContext(cmd.Context(), application.Logger().With("command", cmd.Name())))

	f.VerboseLog("api: %s, cached tokens restored: %t", cfg.APIURL, application.Restored())
	return application, nil
}

// withApp runs fn with a registered application and closes it afterwards.
func (opts *RootOptions) withApp(cmd *cobra.Command, fn func(a *app.Application, f *OutputFormatter) error) error {
	f := opts.formatter(cmd)

	a, err := opts.openApp(cmd, f)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.EnsureRegistered(cmd.Context()); err != nil {
		return f.Fail("registration failed", err)
	}
	return fn(a, f)
}
