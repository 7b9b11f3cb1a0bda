// Package main provides the operator CLI for the flight bot.
package main

import (
	"fmt"
	"os"

	"flightbot-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
