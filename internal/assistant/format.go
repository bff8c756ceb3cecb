package assistant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

// Format renders an aggregate answer as one natural-language sentence.
// Template selection is deterministic on the aggregation and the
// filters present, so identical inputs always yield identical text.
func Format(intent domain.Intent, answer domain.AggregateAnswer) string {
	if answer.Count == 0 {
		// A zero-dollar spend sentence would be misleading here.
		return "I couldn't find any transactions matching your criteria. You might want to try a different time period or category."
	}

	filters := filterPhrase(intent)

	switch intent.Aggregation {
	case domain.AggregationCount:
		return fmt.Sprintf("You made %s%s.", countPhrase(answer.Count), filters)
	case domain.AggregationAverage:
		return fmt.Sprintf("You spent an average of $%s per transaction%s, across %s.",
			formatMoney(answer.Total), filters, countPhrase(answer.Count))
	default:
		return fmt.Sprintf("You spent $%s%s across %s.",
			formatMoney(answer.Total), filters, countPhrase(answer.Count))
	}
}

// filterPhrase renders the present filters in fixed order:
// category, then merchant, then time.
func filterPhrase(intent domain.Intent) string {
	var b strings.Builder
	if intent.Category != "" {
		b.WriteString(" on ")
		b.WriteString(intent.Category)
	}
	if intent.Merchant != "" {
		b.WriteString(" at ")
		b.WriteString(intent.Merchant)
	}
	if intent.TimeRange != nil && intent.TimeRange.Label != "" {
		b.WriteString(" ")
		b.WriteString(intent.TimeRange.Label)
	}
	return b.String()
}

func countPhrase(count int64) string {
	if count == 1 {
		return "1 transaction"
	}
	return fmt.Sprintf("%d transactions", count)
}

// formatMoney renders a fixed two-decimal value with comma grouping,
// locale-neutral: 1119.4 -> "1,119.40".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
