package main

import (
	"fmt"
	"os"

	"github.com/interactive-sql-tutor/sqltutor/internal/cli"
)

func main() {
	if err := cli.Cli(version); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
