// Package main is the entry point for the party generator
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "party-generator",
	Short: "Random Party Generator web front-end",
	Long:  `Serves the Random Party Generator page, which asks the generation backend for a party and shows one card per class-group.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(generateCmd)
}
