// Package main is the entry point for the csv2db binary.
package main

import (
	"os"

	"github.com/JonMunkholm/csv2db/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
