package llm

import (
	"fmt"
	"strings"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

// maxPromptMerchants caps how many merchant names are embedded in the
// prompt; beyond this the model gains little and the prompt bloats.
const maxPromptMerchants = 100

// buildPrompt assembles the intent-extraction prompt: the JSON contract,
// the closed vocabularies, the reference date for relative expressions,
// and the previous turn's intent so the model can interpret ellipsis
// like "What about last week?".
func buildPrompt(req domain.ResolveRequest, categories []string, merchants []string) string {
	basePrompt :=
		"You are an intent extractor for a financial transaction assistant.\n\n" +
			"Task:\n" +
			"- Read the user's question about their transaction history.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output a single JSON object.\n\n" +
			"The object must have these fields:\n" +
			"- \"time_range\": object {\"start\": \"YYYY-MM-DD\", \"end\": \"YYYY-MM-DD\", \"label\": string} or null.\n" +
			"  The interval is half-open: start inclusive, end exclusive.\n" +
			"  The label is the phrase to use in the answer, e.g. \"in September\" or \"last week\".\n" +
			"- \"category\": string (one of the known categories below) or null\n" +
			"- \"merchant\": string (one of the known merchants below) or null\n" +
			"- \"aggregation\": \"SUM\" | \"COUNT\" | \"AVERAGE\"\n\n"

	rulesPrompt :=
		"Rules:\n" +
			"- Set a field to null when the question does not mention it. NEVER guess.\n" +
			"- Only fill slots the CURRENT question states; context is handled downstream.\n" +
			"- \"how many\" style questions mean aggregation COUNT; \"average\" means AVERAGE; otherwise SUM.\n" +
			"- Resolve relative time expressions against the reference date below.\n" +
			"- Return ONLY valid raw JSON.\n" +
			"- Do NOT wrap the response in code fences.\n" +
			"- Do NOT use ```json or any Markdown.\n" +
			"- Output must begin with \"{\" and end with \"}\".\n\n"

	var b strings.Builder
	b.WriteString(basePrompt)

	fmt.Fprintf(&b, "Reference date for relative expressions: %s\n\n", req.Reference.Format("2006-01-02"))

	b.WriteString("Known categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nKnown merchants for this user:\n")
	for i, m := range merchants {
		if i == maxPromptMerchants {
			break
		}
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\n")

	if req.ContextHint != nil {
		b.WriteString("Previous question resolved to:\n")
		if req.ContextHint.TimeRange != nil {
			fmt.Fprintf(&b, "- time_range: %s to %s (%s)\n",
				req.ContextHint.TimeRange.Start.Format("2006-01-02"),
				req.ContextHint.TimeRange.End.Format("2006-01-02"),
				req.ContextHint.TimeRange.Label)
		}
		if req.ContextHint.Category != "" {
			fmt.Fprintf(&b, "- category: %s\n", req.ContextHint.Category)
		}
		if req.ContextHint.Merchant != "" {
			fmt.Fprintf(&b, "- merchant: %s\n", req.ContextHint.Merchant)
		}
		b.WriteString("Use it only to understand what a follow-up refers to; still leave unmentioned fields null.\n\n")
	}

	b.WriteString(rulesPrompt)
	fmt.Fprintf(&b, "User question: %q\n", req.Text)

	return b.String()
}
