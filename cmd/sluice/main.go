package main

import (
	"os"

	"github.com/sluice-go/sluice/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
