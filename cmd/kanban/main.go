// Package main implements the kanban command: the board API server plus
// maintenance subcommands for migrations and board inspection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
