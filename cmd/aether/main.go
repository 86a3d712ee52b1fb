// Command aether is the patent-intelligence CLI and API server.
package main

import (
	"os"

	"github.com/turtacn/aether-intel/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
