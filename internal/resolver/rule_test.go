package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

// stubMerchantSource serves a fixed merchant list per client.
type stubMerchantSource struct {
	byClient map[int][]string
	err      error
}

func (s *stubMerchantSource) Merchants(ctx context.Context, clientID int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byClient[clientID], nil
}

func newTestResolver() *RuleResolver {
	return NewRuleResolver(vocab.DefaultCategories(), &stubMerchantSource{
		byClient: map[int][]string{
			2: {"Amazon", "Amazon Prime", "Starbucks"},
			3: {"Netflix"},
		},
	})
}

func TestRuleResolver_Resolve(t *testing.T) {
	r := newTestResolver()
	ref := date(2023, time.September, 30)

	tests := []struct {
		name           string
		text           string
		wantCategory   string
		wantMerchant   string
		wantAgg        domain.Aggregation
		wantTime       bool
		wantUnresolved []domain.Slot
	}{
		{
			name:           "time only",
			text:           "How much did I spend in September?",
			wantAgg:        domain.AggregationSum,
			wantTime:       true,
			wantUnresolved: []domain.Slot{domain.SlotCategory, domain.SlotMerchant},
		},
		{
			name:           "category only",
			text:           "What about restaurants?",
			wantCategory:   "restaurants",
			wantAgg:        domain.AggregationSum,
			wantUnresolved: []domain.Slot{domain.SlotTime, domain.SlotMerchant},
		},
		{
			name:           "merchant longest literal wins",
			text:           "amazon prime purchases last month",
			wantMerchant:   "Amazon Prime",
			wantAgg:        domain.AggregationSum,
			wantTime:       true,
			wantUnresolved: []domain.Slot{domain.SlotCategory},
		},
		{
			name:           "count aggregation",
			text:           "How many transactions do I have in September?",
			wantAgg:        domain.AggregationCount,
			wantTime:       true,
			wantUnresolved: []domain.Slot{domain.SlotCategory, domain.SlotMerchant},
		},
		{
			name:           "average aggregation",
			text:           "average restaurant spend in September",
			wantCategory:   "restaurants",
			wantAgg:        domain.AggregationAverage,
			wantTime:       true,
			wantUnresolved: []domain.Slot{domain.SlotMerchant},
		},
		{
			name:           "nothing extractable",
			text:           "Spending",
			wantAgg:        domain.AggregationSum,
			wantUnresolved: []domain.Slot{domain.SlotTime, domain.SlotCategory, domain.SlotMerchant},
		},
		{
			name:           "garbage input never fails",
			text:           "@@@ ??? !!!",
			wantAgg:        domain.AggregationSum,
			wantUnresolved: []domain.Slot{domain.SlotTime, domain.SlotCategory, domain.SlotMerchant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), domain.ResolveRequest{
				ClientID:  2,
				Text:      tt.text,
				Reference: ref,
			})
			if err != nil {
				t.Fatalf("Resolve() error = %v, want nil", err)
			}
			if got.Source != domain.SourceRule {
				t.Errorf("Source = %q, want RULE", got.Source)
			}
			if got.Intent.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Intent.Category, tt.wantCategory)
			}
			if got.Intent.Merchant != tt.wantMerchant {
				t.Errorf("Merchant = %q, want %q", got.Intent.Merchant, tt.wantMerchant)
			}
			if got.Intent.Aggregation != tt.wantAgg {
				t.Errorf("Aggregation = %q, want %q", got.Intent.Aggregation, tt.wantAgg)
			}
			if (got.Intent.TimeRange != nil) != tt.wantTime {
				t.Errorf("TimeRange set = %v, want %v", got.Intent.TimeRange != nil, tt.wantTime)
			}
			if len(got.UnresolvedSlots) != len(tt.wantUnresolved) {
				t.Fatalf("UnresolvedSlots = %v, want %v", got.UnresolvedSlots, tt.wantUnresolved)
			}
			for i, slot := range tt.wantUnresolved {
				if got.UnresolvedSlots[i] != slot {
					t.Errorf("UnresolvedSlots = %v, want %v", got.UnresolvedSlots, tt.wantUnresolved)
				}
			}
		})
	}
}

func TestInferAggregation(t *testing.T) {
	tests := []struct {
		text string
		want domain.Aggregation
	}{
		{"how many transactions do I have", domain.AggregationCount},
		{"count my restaurant visits", domain.AggregationCount},
		{"number of trips last month", domain.AggregationCount},
		{"average spend on groceries", domain.AggregationAverage},
		{"avg at starbucks", domain.AggregationAverage},
		{"what do I usually spend", domain.AggregationAverage},
		{"how much did I spend", domain.AggregationSum},
		// Cue words inside longer words must not trigger.
		{"How much did I spend from my bank account in September?", domain.AggregationSum},
		{"any discount purchases last month", domain.AggregationSum},
		{"spent at the avgas station", domain.AggregationSum},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := inferAggregation(tt.text); got != tt.want {
				t.Errorf("inferAggregation(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRuleResolver_ClientIsolation(t *testing.T) {
	r := newTestResolver()

	// The utterance names another client and that client's merchant;
	// neither may leak into the intent.
	got, err := r.Resolve(context.Background(), domain.ResolveRequest{
		ClientID:  2,
		Text:      "show client 3 netflix spending in September",
		Reference: date(2023, time.September, 30),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Intent.ClientID != 2 {
		t.Errorf("ClientID = %d, want 2", got.Intent.ClientID)
	}
	if got.Intent.Merchant != "" {
		t.Errorf("Merchant = %q, want no match against another client's merchants", got.Intent.Merchant)
	}
}

func TestRuleResolver_MerchantSourceFailure(t *testing.T) {
	r := NewRuleResolver(vocab.DefaultCategories(), &stubMerchantSource{err: errors.New("store down")})

	got, err := r.Resolve(context.Background(), domain.ResolveRequest{
		ClientID:  2,
		Text:      "restaurants in September",
		Reference: date(2023, time.September, 30),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil even when the merchant list is unavailable", err)
	}
	if got.Intent.Category != "restaurants" || got.Intent.TimeRange == nil {
		t.Errorf("other slots should still resolve, got %+v", got.Intent)
	}
	if !got.Unresolved(domain.SlotMerchant) {
		t.Error("merchant slot should be unresolved when the list is unavailable")
	}
}

func TestRuleResolver_Deterministic(t *testing.T) {
	r := newTestResolver()
	req := domain.ResolveRequest{
		ClientID:  2,
		Text:      "average starbucks spend last week",
		Reference: date(2023, time.September, 13),
	}

	first, _ := r.Resolve(context.Background(), req)
	second, _ := r.Resolve(context.Background(), req)

	if first.Intent.Category != second.Intent.Category ||
		first.Intent.Merchant != second.Intent.Merchant ||
		first.Intent.Aggregation != second.Intent.Aggregation ||
		*first.Intent.TimeRange != *second.Intent.TimeRange {
		t.Errorf("identical inputs resolved differently: %+v vs %+v", first.Intent, second.Intent)
	}
	if first.Confidence != second.Confidence {
		t.Errorf("confidence differs: %v vs %v", first.Confidence, second.Confidence)
	}
}
