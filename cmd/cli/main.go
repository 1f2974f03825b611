package main

import (
	"os"

	"github.com/tradehub-dev/tradehub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
