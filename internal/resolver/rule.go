// Package resolver implements the deterministic, rule-based resolution
// path: time expressions, category keywords and merchant names are
// extracted from the utterance with no external calls.
package resolver

import (
	"context"
	"strings"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/logger"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

// MerchantSource supplies the known merchant list for one client.
// Merchant extraction is always scoped to the requesting client's own
// transactions, never across clients.
type MerchantSource interface {
	Merchants(ctx context.Context, clientID int) ([]string, error)
}

// RuleResolver is the pattern-matching resolution path. Given identical
// text and vocabularies its output is reproducible. It never fails: on
// malformed input it returns a result with every slot unresolved.
type RuleResolver struct {
	categories *vocab.CategoryTable
	merchants  MerchantSource
}

func NewRuleResolver(categories *vocab.CategoryTable, merchants MerchantSource) *RuleResolver {
	return &RuleResolver{categories: categories, merchants: merchants}
}

// Resolve extracts intent slots from the utterance. The returned error
// is always nil; it exists to satisfy the resolver contract shared with
// the LLM-assisted path.
func (r *RuleResolver) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolutionResult, error) {
	intent := domain.Intent{
		ClientID:    req.ClientID,
		Aggregation: inferAggregation(req.Text),
	}
	var unresolved []domain.Slot

	if tr := ResolveTime(req.Text, req.Reference); tr != nil {
		intent.TimeRange = tr
	} else {
		unresolved = append(unresolved, domain.SlotTime)
	}

	if cat := r.categories.Match(req.Text); cat != "" {
		intent.Category = cat
	} else {
		unresolved = append(unresolved, domain.SlotCategory)
	}

	if merchant := r.matchMerchant(ctx, req); merchant != "" {
		intent.Merchant = merchant
	} else {
		unresolved = append(unresolved, domain.SlotMerchant)
	}

	return domain.ResolutionResult{
		Intent:          intent,
		Source:          domain.SourceRule,
		Confidence:      float64(3-len(unresolved)) / 3,
		UnresolvedSlots: unresolved,
	}, nil
}

func (r *RuleResolver) matchMerchant(ctx context.Context, req domain.ResolveRequest) string {
	names, err := r.merchants.Merchants(ctx, req.ClientID)
	if err != nil {
		// A store hiccup must not fail resolution; the slot simply
		// stays unresolved.
		logger.FromContext(ctx).Warn().Err(err).Int("client_id", req.ClientID).
			Msg("merchant list unavailable, skipping merchant extraction")
		return ""
	}
	return vocab.NewMerchantIndex(names).Match(req.Text)
}

// inferAggregation picks the aggregation from counting or averaging
// phrasing; everything else defaults to a spend sum. Cues match on
// word boundaries, so "account" or "discount" never trigger COUNT.
func inferAggregation(text string) domain.Aggregation {
	lower := strings.ToLower(text)
	switch {
	case vocab.ContainsWord(lower, "how many"),
		vocab.ContainsWord(lower, "count"),
		vocab.ContainsWord(lower, "number of"):
		return domain.AggregationCount
	case vocab.ContainsWord(lower, "average"),
		vocab.ContainsWord(lower, "typical"),
		vocab.ContainsWord(lower, "usually"),
		vocab.ContainsWord(lower, "avg"):
		return domain.AggregationAverage
	default:
		return domain.AggregationSum
	}
}
