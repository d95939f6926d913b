package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kbukum/solrkit/client"
	"github.com/kbukum/solrkit/request"
)

type queryFlags struct {
	q       string
	rows    int
	fl      string
	handler string
	params  []string
}

func newQueryCmd(f *globalFlags) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a search against the select handler",
		Example: `  solrctl query --q 'title:solr' --rows 5 --fl id,title
  solrctl query --q '*:*' --param fq=type:book --param sort='id asc'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := request.New(request.MethodGet, qf.handler).AddParam("q", qf.q)
			if cmd.Flags().Changed("rows") {
				req.AddParam("rows", strconv.Itoa(qf.rows))
			}
			if qf.fl != "" {
				req.AddParam("fl", qf.fl)
			}
			if err := parseParams(req, qf.params); err != nil {
				return err
			}
			return withClient(cmd, f, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Execute(ctx, req, f.endpoint)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp, false)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&qf.q, "q", "*:*", "query string")
	fs.IntVar(&qf.rows, "rows", 10, "maximum number of documents to return")
	fs.StringVar(&qf.fl, "fl", "", "comma-separated list of fields to return")
	fs.StringVar(&qf.handler, "handler", "select", "search handler")
	fs.StringArrayVarP(&qf.params, "param", "p", nil, "extra parameter as key=value (repeatable)")
	return cmd
}
