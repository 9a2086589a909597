package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/walletsdk/internal/walletctl/app"
)

type getOptions struct {
	sign   bool
	params []string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Send an authorized GET to any wallet service path",
		Long: `Send an authorized GET request to a path of the wallet service and print
the response body. The request goes through the same token recovery as the
typed commands.`,
		Example:       `  walletctl get /badge/my --param walletId=w1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(a *app.Application, f *OutputFormatter) error {
				return runGet(cmd, a, f, opts, args[0])
			})
		},
	}

	cmd.Flags().BoolVar(&opts.sign, "sign", false, "add the X-API-Signature header")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "query parameter as key=value (repeatable)")

	return cmd
}

func runGet(cmd *cobra.Command, a *app.Application, f *OutputFormatter, opts *getOptions, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	params := make(map[string]string, len(opts.params))
	for _, param := range opts.params {
		key, value, ok := strings.Cut(param, "=")
		if !ok || key == "" {
			_ = f.Error(ErrCodeConfig, fmt.Sprintf("invalid --param %q: expected key=value", param), 0)
			return WrapExitError(ExitCommandError, "invalid --param", nil)
		}
		params[key] = value
	}

	req := a.Client().NewRequest(http.MethodGet, path).WithParams(params)
	if opts.sign {
		signed, err := a.Client().Sign(req)
		if err != nil {
			return f.Fail("failed to sign request", err)
		}
		req = signed
	}

	resp, err := a.Client().Execute(cmd.Context(), req)
	if err != nil {
		return f.Fail("request failed", err)
	}

	var data any = string(resp.Body)
	if json.Valid(resp.Body) {
		data = json.RawMessage(resp.Body)
	}
	return f.Success(data, string(resp.Body))
}
