package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/solrkit/client"
)

func newPingCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Call the admin/ping handler of the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, f, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Ping(ctx, f.endpoint)
				if resp != nil {
					if perr := printResponse(cmd.OutOrStdout(), resp, false); perr != nil {
						return perr
					}
				}
				return err
			})
		},
	}
}
