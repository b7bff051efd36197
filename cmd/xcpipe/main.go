// Package main is the entry point for the xcpipe CLI.
package main

import (
	"os"

	"github.com/xcpipe/xcpipe/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
