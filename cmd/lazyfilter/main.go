// lazyfilter builds AND/OR filter chains for PostgreSQL tables in the terminal.
package main

import (
	"os"

	"github.com/rebelice/lazyfilter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
