// Package main provides the entry point for the localfiles CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/localfiles/cmd/localfiles/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
