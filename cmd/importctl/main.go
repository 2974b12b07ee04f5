// Command importctl runs listing imports and media uploads from the shell.
package main

import (
	"fmt"
	"os"

	"property-import-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
