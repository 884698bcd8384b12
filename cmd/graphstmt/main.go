// Command graphstmt runs graph statement documents against a SQLite or
// Neo4j graph store.
package main

import (
	"os"

	"github.com/roach88/graphstmt/internal/cli"
)

func main() {
	os.Exit(cli.GetExitCode(cli.Execute(cli.NewRootCommand())))
}
