package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/party-generator/internal/clients/partygen"
	"github.com/KirkDiggler/party-generator/internal/orchestrators/party"
)

var (
	generateURL     string
	generateSize    int
	generateTimeout time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Request one party from the generation backend",
	Long:  `Sends a single generation request to the backend and prints the returned class-groups as JSON.`,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateURL, "generator-url", partygen.DefaultBaseURL, "generation backend base URL")
	generateCmd.Flags().IntVar(&generateSize, "size", party.PartySize, "number of characters to request")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 30*time.Second, "request timeout")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	client, err := partygen.New(&partygen.Config{
		BaseURL: generateURL,
		Timeout: generateTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create generator client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	output, err := client.GenerateParty(ctx, &partygen.GenerateInput{NumCharacters: generateSize})
	if err != nil {
		return fmt.Errorf("failed to generate party: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(output.Results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d class-groups generated\n", len(output.Results))
	return nil
}
