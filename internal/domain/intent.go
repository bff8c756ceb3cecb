package domain

import (
	"time"
)

// Aggregation selects how matching transactions are reduced to a number.
type Aggregation string

const (
	AggregationSum     Aggregation = "SUM"
	AggregationCount   Aggregation = "COUNT"
	AggregationAverage Aggregation = "AVERAGE"
)

// TimeRange is a half-open interval [Start, End).
// Label carries the surface form used when rendering the answer,
// e.g. "in September" or "last week".
type TimeRange struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside [Start, End).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Intent is the structured representation of one resolved question.
// ClientID always comes from the active session, never from free text.
// A nil TimeRange means "all time"; empty Category/Merchant mean "any".
type Intent struct {
	ClientID    int
	TimeRange   *TimeRange
	Category    string
	Merchant    string
	Aggregation Aggregation
}

// HasFilter reports whether at least one of time range, category or
// merchant is set. An intent without any filter is underspecified and
// must not reach the store.
func (in Intent) HasFilter() bool {
	return in.TimeRange != nil || in.Category != "" || in.Merchant != ""
}

// Slot names an intent field a resolver may leave unresolved.
type Slot string

const (
	SlotTime     Slot = "time"
	SlotCategory Slot = "category"
	SlotMerchant Slot = "merchant"
)

// ResolverSource tags which resolution path produced a result.
type ResolverSource string

const (
	SourceRule ResolverSource = "RULE"
	SourceLLM  ResolverSource = "LLM"
)

// ResolutionResult is the carrier between a resolver and the dispatcher:
// a partially filled intent plus the slots the resolver could not
// determine from the current utterance alone.
type ResolutionResult struct {
	Intent          Intent
	Source          ResolverSource
	Confidence      float64
	UnresolvedSlots []Slot
}

// Unresolved reports whether the given slot was left open by the resolver.
func (r ResolutionResult) Unresolved(s Slot) bool {
	for _, u := range r.UnresolvedSlots {
		if u == s {
			return true
		}
	}
	return false
}

// ResolveRequest is the input both resolver variants accept.
// Reference anchors relative time expressions ("last month");
// ContextHint is the previous turn's intent, if any, so an
// LLM-assisted resolver can interpret ellipsis.
type ResolveRequest struct {
	ClientID    int
	Text        string
	Reference   time.Time
	ContextHint *Intent
}
