// Command docindex builds, checks and queries documentation search indexes
// outside the MCP server.
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
