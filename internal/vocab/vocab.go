// Package vocab holds the closed vocabularies the resolvers are allowed
// to produce: the category synonym table and the per-client merchant
// index. Anything outside these vocabularies is discarded before it can
// influence query construction.
package vocab

import (
	"sort"
	"strings"
)

type categoryEntry struct {
	surface   string
	canonical string
}

// CategoryTable maps surface forms ("dining", "fast food") to canonical
// category codes ("restaurants"). Matching is longest-surface-first so
// "fast food" never matches only "food".
type CategoryTable struct {
	entries    []categoryEntry
	canonicals map[string]bool
}

// NewCategoryTable builds a table from canonical code -> surface forms.
// The canonical code itself is always a valid surface form.
func NewCategoryTable(synonyms map[string][]string) *CategoryTable {
	t := &CategoryTable{canonicals: make(map[string]bool, len(synonyms))}
	for canonical, surfaces := range synonyms {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		t.canonicals[canonical] = true
		t.entries = append(t.entries, categoryEntry{surface: canonical, canonical: canonical})
		for _, s := range surfaces {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" || s == canonical {
				continue
			}
			t.entries = append(t.entries, categoryEntry{surface: s, canonical: canonical})
		}
	}
	sort.Slice(t.entries, func(i, j int) bool {
		if len(t.entries[i].surface) != len(t.entries[j].surface) {
			return len(t.entries[i].surface) > len(t.entries[j].surface)
		}
		return t.entries[i].surface < t.entries[j].surface
	})
	return t
}

// DefaultCategories returns the built-in category taxonomy covering the
// transaction dataset's category labels and their common surface forms.
func DefaultCategories() *CategoryTable {
	return NewCategoryTable(map[string][]string{
		"restaurants":     {"restaurant", "dining", "eating out", "fast food", "food"},
		"groceries":       {"grocery", "supermarket", "supermarkets"},
		"shops":           {"shop", "shopping", "retail", "stores"},
		"travel":          {"trips", "flights", "hotels", "vacation"},
		"entertainment":   {"movies", "concerts", "fun"},
		"loans":           {"loan", "loan payments"},
		"bills":           {"bill", "utilities", "utility"},
		"transfer":        {"transfers"},
		"atm":             {"cash withdrawal", "cash withdrawals"},
		"service charges": {"fees", "bank fees", "charges"},
		"deposit":         {"deposits", "paycheck", "salary"},
		"gas":             {"fuel", "petrol", "gas stations"},
	})
}

// Match scans text for the longest known surface form and returns its
// canonical category code, or "" when nothing matches. Matching is
// case-insensitive on whole words.
func (t *CategoryTable) Match(text string) string {
	lower := strings.ToLower(text)
	for _, e := range t.entries {
		if ContainsWord(lower, e.surface) {
			return e.canonical
		}
	}
	return ""
}

// Canonicalize maps a claimed category label (canonical or synonym) to
// its canonical code. Used to validate untrusted resolver output; labels
// outside the table are rejected.
func (t *CategoryTable) Canonicalize(label string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "", false
	}
	if t.canonicals[s] {
		return s, true
	}
	for _, e := range t.entries {
		if e.surface == s {
			return e.canonical, true
		}
	}
	return "", false
}

// Canonicals returns the canonical category codes in sorted order,
// e.g. for embedding the closed vocabulary into a prompt.
func (t *CategoryTable) Canonicals() []string {
	out := make([]string, 0, len(t.canonicals))
	for c := range t.canonicals {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ContainsWord reports whether needle occurs in haystack on word
// boundaries, so "count" never matches inside "account". Both inputs
// must already be lower-cased; needle may span multiple words.
func ContainsWord(haystack, needle string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		if (start == 0 || !isWordChar(haystack[start-1])) &&
			(end == len(haystack) || !isWordChar(haystack[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// MerchantIndex matches free text against a known merchant list scoped
// to a single client. Longest literal match wins when several merchants
// appear in the same utterance.
type MerchantIndex struct {
	names []string
	known map[string]string // lower-cased -> original casing
}

// NewMerchantIndex builds an index over the given merchant names.
// Empty and "Unknown" placeholder names are skipped.
func NewMerchantIndex(names []string) *MerchantIndex {
	idx := &MerchantIndex{known: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.EqualFold(n, "unknown") {
			continue
		}
		lower := strings.ToLower(n)
		if _, ok := idx.known[lower]; ok {
			continue
		}
		idx.known[lower] = n
		idx.names = append(idx.names, lower)
	}
	sort.Slice(idx.names, func(i, j int) bool {
		if len(idx.names[i]) != len(idx.names[j]) {
			return len(idx.names[i]) > len(idx.names[j])
		}
		return idx.names[i] < idx.names[j]
	})
	return idx
}

// Match returns the merchant (original casing) whose name occurs as a
// case-insensitive substring of text, preferring the longest literal.
func (m *MerchantIndex) Match(text string) string {
	lower := strings.ToLower(text)
	for _, n := range m.names {
		if strings.Contains(lower, n) {
			return m.known[n]
		}
	}
	return ""
}

// Lookup validates a claimed merchant name against the index and returns
// the stored casing. Names outside the client's own merchant list are
// rejected.
func (m *MerchantIndex) Lookup(name string) (string, bool) {
	original, ok := m.known[strings.ToLower(strings.TrimSpace(name))]
	return original, ok
}
