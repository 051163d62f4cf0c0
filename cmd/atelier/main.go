// Package main provides the atelier CLI for managing instruction
// projects: structured assembly guides stored as self-contained
// folders under a managed root directory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
