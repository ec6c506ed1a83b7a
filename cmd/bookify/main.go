package main

import (
	"os"

	"github.com/bookify-dev/bookify/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
