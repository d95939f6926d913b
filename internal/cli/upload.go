package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/solrkit/client"
	"github.com/kbukum/solrkit/request"
)

type uploadFlags struct {
	method      string
	handler     string
	file        string
	name        string
	contentType string
	params      []string
}

func newUploadCmd(f *globalFlags) *cobra.Command {
	uf := &uploadFlags{}
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a file as a multipart request",
		Example: `  solrctl upload --file books.csv --content-type text/csv --param commit=true
  solrctl upload --handler update/extract --file report.pdf --param literal.id=report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := request.New(strings.ToUpper(uf.method), uf.handler)
			req.FileUpload = &request.FileUpload{Path: uf.file, Name: uf.name}
			req.ContentType = uf.contentType
			if err := parseParams(req, uf.params); err != nil {
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
	fs.StringVarP(&uf.method, "method", "X", request.MethodPost, "HTTP method (POST or PUT)")
	fs.StringVar(&uf.handler, "handler", "update", "request handler relative to the endpoint")
	fs.StringVarP(&uf.file, "file", "f", "", "file to upload")
	fs.StringVar(&uf.name, "name", "", "file name sent to the server (default base name of --file)")
	fs.StringVar(&uf.contentType, "content-type", "", "content type of the file part (default application/octet-stream)")
	fs.StringArrayVarP(&uf.params, "param", "p", nil, "parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
