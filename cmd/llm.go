package cmd

import (
	"context"
	"os"

	"github.com/spf13/viper"

	"github.com/joescharf/hotelops/internal/llm"
)

type triager interface {
	SuggestTriage(ctx context.Context, roomNumber, description string) (*llm.Suggestion, error)
}

// newTriageClient creates an LLM client from config/env, or returns nil if no API key is configured.
func newTriageClient() *llm.Client {
	apiKey := viper.GetString("anthropic.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil
	}
	return llm.NewClient(apiKey, viper.GetString("anthropic.model"))
}

// newTriager prefers the LLM client and falls back to keyword heuristics.
func newTriager() (triager, string) {
	if c := newTriageClient(); c != nil {
		return c, "Claude"
	}
	return llm.KeywordSuggester{}, "keyword heuristics"
}
