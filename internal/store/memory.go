package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

// MemoryStore is an in-memory TransactionStore over a loaded dataset.
// It backs the interactive demo and tests; the BigQuery store is the
// production counterpart.
type MemoryStore struct {
	byClient map[int][]domain.Transaction
}

func NewMemoryStore(txns []domain.Transaction) *MemoryStore {
	s := &MemoryStore{byClient: make(map[int][]domain.Transaction)}
	for _, t := range txns {
		s.byClient[t.ClientID] = append(s.byClient[t.ClientID], t)
	}
	return s
}

// Aggregate filters the client's transactions by the request and
// reduces absolute amounts per the aggregation.
func (s *MemoryStore) Aggregate(ctx context.Context, req QueryRequest) (domain.AggregateAnswer, error) {
	total := decimal.Zero
	var count int64

	for _, t := range s.byClient[req.ClientID] {
		if !matches(t, req) {
			continue
		}
		total = total.Add(t.Amount.Abs())
		count++
	}

	ans := domain.AggregateAnswer{Total: total, Count: count}
	if req.Aggregation == domain.AggregationAverage && count > 0 {
		ans.Total = total.DivRound(decimal.NewFromInt(count), 2)
	}
	return ans, nil
}

func matches(t domain.Transaction, req QueryRequest) bool {
	if req.TimeRange != nil && !req.TimeRange.Contains(t.Date) {
		return false
	}
	if req.Category != "" && !strings.EqualFold(t.Category, req.Category) {
		return false
	}
	if req.Merchant != "" && !strings.EqualFold(t.Merchant, req.Merchant) {
		return false
	}
	return true
}

func (s *MemoryStore) Merchants(ctx context.Context, clientID int) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, t := range s.byClient[clientID] {
		if t.Merchant == "" || strings.EqualFold(t.Merchant, "unknown") || seen[t.Merchant] {
			continue
		}
		seen[t.Merchant] = true
		names = append(names, t.Merchant)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) LatestDate(ctx context.Context, clientID int) (time.Time, error) {
	txns := s.byClient[clientID]
	if len(txns) == 0 {
		return time.Time{}, domain.ErrUnknownClient
	}
	latest := txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest, nil
}

func (s *MemoryStore) ClientSummary(ctx context.Context, clientID int) (domain.ClientSummary, error) {
	txns := s.byClient[clientID]
	if len(txns) == 0 {
		return domain.ClientSummary{}, domain.ErrUnknownClient
	}

	summary := domain.ClientSummary{
		ClientID:         clientID,
		TransactionCount: int64(len(txns)),
		TotalSpending:    decimal.Zero,
		FirstTransaction: txns[0].Date,
		LastTransaction:  txns[0].Date,
	}
	for _, t := range txns {
		summary.TotalSpending = summary.TotalSpending.Add(t.Amount.Abs())
		if t.Date.Before(summary.FirstTransaction) {
			summary.FirstTransaction = t.Date
		}
		if t.Date.After(summary.LastTransaction) {
			summary.LastTransaction = t.Date
		}
	}
	return summary, nil
}

func (s *MemoryStore) Clients(ctx context.Context) ([]domain.ClientSummary, error) {
	ids := make([]int, 0, len(s.byClient))
	for id := range s.byClient {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	summaries := make([]domain.ClientSummary, 0, len(ids))
	for _, id := range ids {
		summary, err := s.ClientSummary(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
