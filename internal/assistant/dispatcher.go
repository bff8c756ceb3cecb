// Package assistant orchestrates question answering: it dispatches to a
// resolver, merges the result with conversation context, validates the
// intent, queries the transaction store and formats the answer.
package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
	"github.com/faiqhilman13/FinancialAssistant/internal/logger"
	"github.com/faiqhilman13/FinancialAssistant/internal/session"
	"github.com/faiqhilman13/FinancialAssistant/internal/store"
)

// Resolver is the resolution strategy shared by the rule-based and
// LLM-assisted paths. Implementations must never put a client id other
// than the request's into the returned intent.
type Resolver interface {
	Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolutionResult, error)
}

// TimeReference selects the anchor for relative time expressions.
type TimeReference string

const (
	// ReferenceDataset anchors on the latest date in the client's own
	// transaction history. Right choice for fixed historical datasets.
	ReferenceDataset TimeReference = "dataset"

	// ReferenceWallClock anchors on the real current date.
	ReferenceWallClock TimeReference = "wallclock"
)

// Assistant owns the per-client conversation contexts and drives one
// question through dispatch, fallback, merge, validate, commit, query
// and formatting. Requests for the same client must not overlap; the
// commit of one request has to be visible to the next request's merge.
type Assistant struct {
	store    store.TransactionStore
	sessions *session.Store
	rule     Resolver
	llm      Resolver // nil when no language service is configured
	timeRef  TimeReference
	now      func() time.Time
}

func New(st store.TransactionStore, rule, llm Resolver, timeRef TimeReference) *Assistant {
	return &Assistant{
		store:    st,
		sessions: session.NewStore(),
		rule:     rule,
		llm:      llm,
		timeRef:  timeRef,
		now:      time.Now,
	}
}

// LLMEnabled reports whether the LLM-assisted path is configured.
func (a *Assistant) LLMEnabled() bool {
	return a.llm != nil
}

// ResetContext drops the client's carried conversation context; the
// next question resolves from its own text alone.
func (a *Assistant) ResetContext(clientID int) {
	a.sessions.Clear(clientID)
}

// ClientSummary exposes the store's per-client statistics for the
// session boundary (shown when the operator switches clients).
func (a *Assistant) ClientSummary(ctx context.Context, clientID int) (domain.ClientSummary, error) {
	return a.store.ClientSummary(ctx, clientID)
}

// Clients lists all clients with data.
func (a *Assistant) Clients(ctx context.Context) ([]domain.ClientSummary, error) {
	return a.store.Clients(ctx)
}

// Ask answers one question for one client. Every terminal failure path
// returns a templated, human-readable message; the error is non-nil
// only for store failures the caller may want to log.
func (a *Assistant) Ask(ctx context.Context, clientID int, text string) (string, error) {
	log := logger.FromContext(ctx).With().
		Str("request_id", uuid.NewString()).
		Int("client_id", clientID).
		Logger()
	ctx = logger.WithContext(ctx, log)
	started := a.now()

	ref, err := a.referenceDate(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownClient) {
			return MessageUnknownClient(clientID), nil
		}
		return MessageStoreTrouble(), err
	}

	req := domain.ResolveRequest{
		ClientID:    clientID,
		Text:        text,
		Reference:   ref,
		ContextHint: a.sessions.Last(clientID),
	}

	result, err := a.resolve(ctx, req)
	if err != nil {
		return MessageStoreTrouble(), err
	}

	merged := mergeWithContext(result, a.sessions.Last(clientID))
	// Client isolation: the intent's client id is always the session's,
	// regardless of anything in the utterance or the resolver output.
	merged.ClientID = clientID

	if !merged.HasFilter() {
		log.Info().Str("source", string(result.Source)).Msg("resolution underspecified, context unchanged")
		return MessageUnderspecified(), nil
	}

	a.sessions.Commit(clientID, merged)

	answer, err := a.store.Aggregate(ctx, store.QueryRequest{
		ClientID:    merged.ClientID,
		TimeRange:   merged.TimeRange,
		Category:    merged.Category,
		Merchant:    merged.Merchant,
		Aggregation: merged.Aggregation,
	})
	if err != nil {
		return MessageStoreTrouble(), err
	}
	answer.Matched = merged

	log.Info().
		Str("source", string(result.Source)).
		Float64("confidence", result.Confidence).
		Int64("matched", answer.Count).
		Dur("elapsed", a.now().Sub(started)).
		Msg("question answered")

	return Format(merged, answer), nil
}

// resolve tries the LLM-assisted path first when configured, falling
// back to rules on any upstream failure. No retry against the upstream
// service within the same request.
func (a *Assistant) resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolutionResult, error) {
	if a.llm != nil {
		result, err := a.llm.Resolve(ctx, req)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			return domain.ResolutionResult{}, err
		}
		logger.FromContext(ctx).Debug().Err(err).Msg("language service unavailable, falling back to rules")
	}
	return a.rule.Resolve(ctx, req)
}

// referenceDate verifies the client exists and returns the anchor for
// relative time expressions per the configured mode.
func (a *Assistant) referenceDate(ctx context.Context, clientID int) (time.Time, error) {
	latest, err := a.store.LatestDate(ctx, clientID)
	if err != nil {
		return time.Time{}, err
	}
	if a.timeRef == ReferenceWallClock {
		return a.now(), nil
	}
	return latest, nil
}

// mergeWithContext fills every slot the resolver left unresolved from
// the previous turn's intent. Slots resolved by the current utterance
// always win; merge is override, never union.
func mergeWithContext(result domain.ResolutionResult, last *domain.Intent) domain.Intent {
	merged := result.Intent
	if last == nil {
		return merged
	}
	if result.Unresolved(domain.SlotTime) && last.TimeRange != nil {
		tr := *last.TimeRange
		merged.TimeRange = &tr
	}
	if result.Unresolved(domain.SlotCategory) && last.Category != "" {
		merged.Category = last.Category
	}
	if result.Unresolved(domain.SlotMerchant) && last.Merchant != "" {
		merged.Merchant = last.Merchant
	}
	return merged
}
