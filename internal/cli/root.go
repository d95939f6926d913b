// Package cli implements the solrctl command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/solrkit/client"
)

const cliName = "solrctl"

type globalFlags struct {
	configFile string
	endpoint   string
	logLevel   string

	// environ replaces os.Environ when loading configuration.
	environ func() []string
}

// Option customizes the command tree.
type Option func(*globalFlags)

// WithEnviron sets the environment used for SOLRKIT_ overrides.
func WithEnviron(fn func() []string) Option {
	return func(f *globalFlags) { f.environ = fn }
}

// NewRootCmd builds the solrctl command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	f := &globalFlags{}
	for _, opt := range opts {
		opt(f)
	}

	root := &cobra.Command{
		Use:   cliName,
		Short: "Send requests to Apache Solr endpoints",
		Long: `solrctl sends requests to Apache Solr endpoints.

Endpoints, timeouts, proxy and credentials are read from config.yml and
SOLRKIT_ environment variables. Every command prints the response status
line followed by the body.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "path to the config file")
	pf.StringVarP(&f.endpoint, "endpoint", "e", "", "key of the endpoint to use (default from config)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newPingCmd(f),
		newQueryCmd(f),
		newRequestCmd(f),
		newUploadCmd(f),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// withClient runs task against a fully started client.
func withClient(cmd *cobra.Command, f *globalFlags, task func(ctx context.Context, c *client.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return a.run(ctx, task)
}
