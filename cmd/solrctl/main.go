// solrctl sends requests to Apache Solr endpoints from the command line.
//
// Usage:
//
//	solrctl ping
//	solrctl query --q 'title:solr' --rows 5
//	solrctl request --handler update --method POST --data @docs.json
//	solrctl upload --file books.csv --content-type text/csv
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/solrkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
