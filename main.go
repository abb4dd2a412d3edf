// Package main provides the entry point for the scoreboard simulator.
// It simulates CDC 6600 style scoreboard scheduling one cycle at a time.
//
// For the full CLI, use: go run ./cmd/scoreboard
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Scoreboard - dynamic scheduling simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: scoreboard [flags] <command> <program>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run        Run a program to completion")
	fmt.Println("  step       Step through a program one action at a time")
	fmt.Println("  latencies  Print the instruction catalog")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/scoreboard --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/scoreboard' instead.")
	}
}
