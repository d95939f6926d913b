package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/solrkit/client"
	"github.com/kbukum/solrkit/errors"
	"github.com/kbukum/solrkit/request"
)

type requestFlags struct {
	method  string
	handler string
	params  []string
	headers []string
	data    string
	api     string
	server  bool
	include bool
}

func newRequestCmd(f *globalFlags) *cobra.Command {
	rf := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send an arbitrary request to a handler",
		Example: `  solrctl request --handler update --method POST \
      --header 'Content-Type: application/json' --data '[{"id":"1"}]' --param commit=true
  solrctl request --handler admin/cores --server --param action=STATUS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := rf.build(cmd)
			if err != nil {
				return err
			}
			return withClient(cmd, f, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Execute(ctx, req, f.endpoint)
				if err != nil {
					return err
				}
				return printResponse(cmd.OutOrStdout(), resp, rf.include)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&rf.method, "method", "X", request.MethodGet, "HTTP method (GET, POST, PUT, DELETE, HEAD)")
	fs.StringVar(&rf.handler, "handler", "", "request handler relative to the endpoint")
	fs.StringArrayVarP(&rf.params, "param", "p", nil, "parameter as key=value (repeatable)")
	fs.StringArrayVarP(&rf.headers, "header", "H", nil, "header line as 'Name: value' (repeatable)")
	fs.StringVarP(&rf.data, "data", "d", "", "request body; @file reads a file and @- reads stdin")
	fs.StringVar(&rf.api, "api", request.APIV1, "API version (v1 or v2)")
	fs.BoolVar(&rf.server, "server", false, "target the server instead of the endpoint core or collection")
	fs.BoolVarP(&rf.include, "include", "i", false, "print every response header")
	_ = cmd.MarkFlagRequired("handler")
	return cmd
}

func (rf *requestFlags) build(cmd *cobra.Command) (*request.Request, error) {
	if rf.api != request.APIV1 && rf.api != request.APIV2 {
		return nil, errors.InvalidArgumentf("unknown api %q", rf.api)
	}
	req := request.New(strings.ToUpper(rf.method), rf.handler)
	req.API = rf.api
	req.IsServerRequest = rf.server
	if err := parseParams(req, rf.params); err != nil {
		return nil, err
	}
	req.AddHeaders(rf.headers...)
	if cmd.Flags().Changed("data") {
		data, err := readData(rf.data, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		req.RawData = data
	}
	return req, nil
}
