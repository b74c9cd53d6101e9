// # cmd/camelize/main.go
package main

import (
	"os"

	"camelize/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
