package llm

import (
	"testing"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

func testVocabs() (*vocab.CategoryTable, *vocab.MerchantIndex) {
	return vocab.DefaultCategories(), vocab.NewMerchantIndex([]string{"Amazon", "Starbucks"})
}

func testRequest() domain.ResolveRequest {
	return domain.ResolveRequest{
		ClientID:  2,
		Text:      "How much did I spend in September?",
		Reference: time.Date(2023, time.September, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCoerceModelOutput_FullIntent(t *testing.T) {
	categories, merchants := testVocabs()
	raw := `{
		"time_range": {"start": "2023-09-01", "end": "2023-10-01", "label": "in September"},
		"category": "restaurants",
		"merchant": "Starbucks",
		"aggregation": "SUM"
	}`

	got, err := coerceModelOutput(raw, testRequest(), categories, merchants)
	if err != nil {
		t.Fatalf("coerceModelOutput() error = %v", err)
	}
	if got.Source != domain.SourceLLM {
		t.Errorf("Source = %q, want LLM", got.Source)
	}
	if got.Intent.ClientID != 2 {
		t.Errorf("ClientID = %d, want the request's client id", got.Intent.ClientID)
	}
	if got.Intent.Category != "restaurants" || got.Intent.Merchant != "Starbucks" {
		t.Errorf("unexpected intent %+v", got.Intent)
	}
	if got.Intent.TimeRange == nil || got.Intent.TimeRange.Label != "in September" {
		t.Errorf("TimeRange = %+v", got.Intent.TimeRange)
	}
	if len(got.UnresolvedSlots) != 0 {
		t.Errorf("UnresolvedSlots = %v, want none", got.UnresolvedSlots)
	}
}

func TestCoerceModelOutput_DiscardsOutOfVocabulary(t *testing.T) {
	categories, merchants := testVocabs()

	tests := []struct {
		name string
		raw  string
	}{
		{"invented category", `{"category": "cryptocurrency", "merchant": null, "time_range": null, "aggregation": "SUM"}`},
		{"merchant outside client list", `{"category": null, "merchant": "Netflix", "time_range": null, "aggregation": "SUM"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceModelOutput(tt.raw, testRequest(), categories, merchants)
			if err != nil {
				t.Fatalf("coerceModelOutput() error = %v", err)
			}
			if got.Intent.Category != "" || got.Intent.Merchant != "" {
				t.Errorf("out-of-vocabulary field trusted: %+v", got.Intent)
			}
			if !got.Unresolved(domain.SlotCategory) || !got.Unresolved(domain.SlotMerchant) {
				t.Errorf("discarded fields must be unresolved, got %v", got.UnresolvedSlots)
			}
		})
	}
}

func TestCoerceModelOutput_SynonymCategoryCanonicalized(t *testing.T) {
	categories, merchants := testVocabs()
	raw := `{"category": "dining", "merchant": null, "time_range": null, "aggregation": "AVERAGE"}`

	got, err := coerceModelOutput(raw, testRequest(), categories, merchants)
	if err != nil {
		t.Fatalf("coerceModelOutput() error = %v", err)
	}
	if got.Intent.Category != "restaurants" {
		t.Errorf("Category = %q, want canonical restaurants", got.Intent.Category)
	}
	if got.Intent.Aggregation != domain.AggregationAverage {
		t.Errorf("Aggregation = %q, want AVERAGE", got.Intent.Aggregation)
	}
}

func TestCoerceModelOutput_BadTimeRanges(t *testing.T) {
	categories, merchants := testVocabs()

	tests := []struct {
		name string
		raw  string
	}{
		{"inverted interval", `{"time_range": {"start": "2023-10-01", "end": "2023-09-01"}, "aggregation": "SUM"}`},
		{"unparsable dates", `{"time_range": {"start": "September", "end": "October"}, "aggregation": "SUM"}`},
		{"wrong type", `{"time_range": "September", "aggregation": "SUM"}`},
		{"missing end", `{"time_range": {"start": "2023-09-01"}, "aggregation": "SUM"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceModelOutput(tt.raw, testRequest(), categories, merchants)
			if err != nil {
				t.Fatalf("coerceModelOutput() error = %v", err)
			}
			if got.Intent.TimeRange != nil {
				t.Errorf("invalid time_range trusted: %+v", got.Intent.TimeRange)
			}
			if !got.Unresolved(domain.SlotTime) {
				t.Error("discarded time_range must leave the slot unresolved")
			}
		})
	}
}

func TestCoerceModelOutput_SynthesizedLabel(t *testing.T) {
	categories, merchants := testVocabs()
	raw := `{"time_range": {"start": "2023-09-01", "end": "2023-10-01"}, "aggregation": "SUM"}`

	got, err := coerceModelOutput(raw, testRequest(), categories, merchants)
	if err != nil {
		t.Fatalf("coerceModelOutput() error = %v", err)
	}
	if got.Intent.TimeRange == nil || got.Intent.TimeRange.Label != "in September" {
		t.Errorf("TimeRange = %+v, want synthesized label \"in September\"", got.Intent.TimeRange)
	}
}

func TestCoerceModelOutput_UnknownAggregationDefaultsToSum(t *testing.T) {
	categories, merchants := testVocabs()
	raw := `{"category": "groceries", "aggregation": "MEDIAN"}`

	got, err := coerceModelOutput(raw, testRequest(), categories, merchants)
	if err != nil {
		t.Fatalf("coerceModelOutput() error = %v", err)
	}
	if got.Intent.Aggregation != domain.AggregationSum {
		t.Errorf("Aggregation = %q, want SUM default", got.Intent.Aggregation)
	}
}

func TestCoerceModelOutput_RejectsNonJSON(t *testing.T) {
	categories, merchants := testVocabs()

	if _, err := coerceModelOutput("I cannot answer that.", testRequest(), categories, merchants); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fences", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", "Here you go:\n{\"a\": 1}\nHope that helps!", `{"a": 1}`},
		{"whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
