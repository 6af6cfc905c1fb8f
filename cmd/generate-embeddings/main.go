// Package main is the entry point for the generate-embeddings CLI.
package main

import (
	"fmt"
	"os"

	"github.com/openstrand/oracle-indexer/internal/adapters/driving/cli"
	"github.com/openstrand/oracle-indexer/internal/logger"
)

func main() {
	if err := cli.Execute(); err != nil {
		if logger.IsVerbose() {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
