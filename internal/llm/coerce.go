package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/vocab"
)

const llmConfidence = 0.9

// coerceModelOutput decodes the raw model response and validates it
// against the closed intent schema. Invalid or out-of-vocabulary fields
// are discarded and reported as unresolved slots rather than trusted.
// Only a response that fails to decode at all is an error.
func coerceModelOutput(raw string, req domain.ResolveRequest, categories *vocab.CategoryTable, merchants *vocab.MerchantIndex) (domain.ResolutionResult, error) {
	clean := cleanModelJSON(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return domain.ResolutionResult{}, fmt.Errorf("coerceModelOutput: unmarshal JSON: %w", err)
	}

	// ClientID is always the session's, never derived from model output.
	intent := domain.Intent{
		ClientID:    req.ClientID,
		Aggregation: coerceAggregation(obj),
	}
	var unresolved []domain.Slot

	if tr := coerceTimeRange(obj, req.Reference); tr != nil {
		intent.TimeRange = tr
	} else {
		unresolved = append(unresolved, domain.SlotTime)
	}

	if label, _ := getOptionalString(obj, "category"); label != "" {
		if canonical, ok := categories.Canonicalize(label); ok {
			intent.Category = canonical
		}
	}
	if intent.Category == "" {
		unresolved = append(unresolved, domain.SlotCategory)
	}

	if name, _ := getOptionalString(obj, "merchant"); name != "" {
		if known, ok := merchants.Lookup(name); ok {
			intent.Merchant = known
		}
	}
	if intent.Merchant == "" {
		unresolved = append(unresolved, domain.SlotMerchant)
	}

	return domain.ResolutionResult{
		Intent:          intent,
		Source:          domain.SourceLLM,
		Confidence:      llmConfidence,
		UnresolvedSlots: unresolved,
	}, nil
}

// coerceTimeRange validates the model's time_range object. Unparsable
// dates or an inverted interval discard the whole field.
func coerceTimeRange(obj map[string]interface{}, ref time.Time) *domain.TimeRange {
	v, ok := obj["time_range"]
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}

	startStr, _ := getOptionalString(m, "start")
	endStr, _ := getOptionalString(m, "end")
	if startStr == "" || endStr == "" {
		return nil
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return nil
	}
	if !start.Before(end) {
		return nil
	}

	label, _ := getOptionalString(m, "label")
	if label == "" {
		label = rangeLabel(start, end, ref)
	}

	return &domain.TimeRange{Start: start, End: end, Label: label}
}

func coerceAggregation(obj map[string]interface{}) domain.Aggregation {
	s, _ := getOptionalString(obj, "aggregation")
	switch domain.Aggregation(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.AggregationCount:
		return domain.AggregationCount
	case domain.AggregationAverage:
		return domain.AggregationAverage
	default:
		return domain.AggregationSum
	}
}

// rangeLabel synthesizes a rendering label when the model omitted one.
// A single calendar month gets the month name; anything else gets the
// explicit interval.
func rangeLabel(start, end, ref time.Time) string {
	monthEnd := start.AddDate(0, 1, 0)
	if start.Day() == 1 && end.Equal(monthEnd) {
		if start.Year() == ref.Year() {
			return "in " + start.Month().String()
		}
		return fmt.Sprintf("in %s %d", start.Month(), start.Year())
	}
	return fmt.Sprintf("between %s and %s", start.Format("Jan 2, 2006"), end.AddDate(0, 0, -1).Format("Jan 2, 2006"))
}

func getOptionalString(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
	return strings.TrimSpace(s), nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the
// model ignores the raw-JSON instruction, keeping only the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
