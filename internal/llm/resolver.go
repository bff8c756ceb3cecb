// Package llm implements the LLM-assisted resolution path. The external
// model is treated as an untrusted collaborator: its output is decoded
// into a provisional structure and validated against the closed intent
// vocabularies before anything reaches the query compiler.
package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/logger"
	"github.com/faiqhilman13/FinancialAssistant/internal/resolver"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

// DefaultModelName is the Gemini model used for intent extraction.
const DefaultModelName = "gemini-2.5-flash"

// textGenerator abstracts the single model call so resolution logic can
// be tested without the network.
type textGenerator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// geminiGenerator calls the Gemini API. A client is created per call,
// scoped to the request context so the timeout bounds connection setup
// as well as generation.
type geminiGenerator struct {
	apiKey string
	model  string
}

func (g *geminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("generate: empty response from model")
	}
	return rawText, nil
}

// Resolver delegates intent extraction to the Gemini API. Every failure
// mode (unreachable service, timeout, unparsable payload) surfaces as
// domain.ErrUpstreamUnavailable so the dispatcher can fall back to the
// rule-based path without retrying.
type Resolver struct {
	gen        textGenerator
	timeout    time.Duration
	categories *vocab.CategoryTable
	merchants  resolver.MerchantSource
}

func NewResolver(apiKey, model string, timeout time.Duration, categories *vocab.CategoryTable, merchants resolver.MerchantSource) *Resolver {
	if model == "" {
		model = DefaultModelName
	}
	return &Resolver{
		gen:        &geminiGenerator{apiKey: apiKey, model: model},
		timeout:    timeout,
		categories: categories,
		merchants:  merchants,
	}
}

// Resolve extracts intent slots from the utterance via the model, then
// coerces the raw structure into the closed intent schema. Fields the
// model invents outside the known vocabularies are discarded, not
// trusted verbatim.
func (r *Resolver) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolutionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.merchants.Merchants(ctx, req.ClientID)
	if err != nil {
		return domain.ResolutionResult{}, fmt.Errorf("llm resolve: merchant list: %w", domain.ErrUpstreamUnavailable)
	}
	merchantIdx := vocab.NewMerchantIndex(names)

	prompt := buildPrompt(req, r.categories.Canonicals(), names)

	raw, err := r.gen.generate(ctx, prompt)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("model call failed")
		return domain.ResolutionResult{}, fmt.Errorf("llm resolve: %w", domain.ErrUpstreamUnavailable)
	}

	result, err := coerceModelOutput(raw, req, r.categories, merchantIdx)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Str("raw", raw).Msg("model output rejected")
		return domain.ResolutionResult{}, fmt.Errorf("llm resolve: %w", domain.ErrUpstreamUnavailable)
	}
	return result, nil
}
