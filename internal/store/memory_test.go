package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testTransactions() []domain.Transaction {
	day := func(d int) time.Time {
		return time.Date(2023, time.September, d, 12, 0, 0, 0, time.UTC)
	}
	return []domain.Transaction{
		{ClientID: 2, TxnID: 1, Date: day(2), Amount: amount("-50.25"), Category: "Restaurants", Merchant: "Starbucks"},
		{ClientID: 2, TxnID: 2, Date: day(5), Amount: amount("-120.00"), Category: "Shops", Merchant: "Amazon"},
		{ClientID: 2, TxnID: 3, Date: day(10), Amount: amount("200.00"), Category: "Deposit", Merchant: "Unknown"},
		{ClientID: 2, TxnID: 4, Date: time.Date(2023, time.August, 20, 0, 0, 0, 0, time.UTC), Amount: amount("-30.00"), Category: "Restaurants", Merchant: "Starbucks"},
		{ClientID: 3, TxnID: 5, Date: day(3), Amount: amount("-999.99"), Category: "Restaurants", Merchant: "Nobu"},
	}
}

func september() *domain.TimeRange {
	return &domain.TimeRange{
		Start: time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
		Label: "in September",
	}
}

func TestMemoryStore_AggregateSum(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	ans, err := s.Aggregate(context.Background(), QueryRequest{
		ClientID:    2,
		TimeRange:   september(),
		Aggregation: domain.AggregationSum,
	})
	require.NoError(t, err)

	// Absolute amounts: 50.25 + 120.00 + 200.00.
	assert.Equal(t, "370.25", ans.Total.StringFixed(2))
	assert.Equal(t, int64(3), ans.Count)
}

func TestMemoryStore_AggregateFilters(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	tests := []struct {
		name      string
		req       QueryRequest
		wantTotal string
		wantCount int64
	}{
		{
			name:      "category filter is case-insensitive",
			req:       QueryRequest{ClientID: 2, Category: "restaurants"},
			wantTotal: "80.25",
			wantCount: 2,
		},
		{
			name:      "time and category",
			req:       QueryRequest{ClientID: 2, TimeRange: september(), Category: "restaurants"},
			wantTotal: "50.25",
			wantCount: 1,
		},
		{
			name:      "merchant filter",
			req:       QueryRequest{ClientID: 2, Merchant: "Amazon"},
			wantTotal: "120.00",
			wantCount: 1,
		},
		{
			name:      "no filters means all time",
			req:       QueryRequest{ClientID: 2},
			wantTotal: "400.25",
			wantCount: 4,
		},
		{
			name:      "average",
			req:       QueryRequest{ClientID: 2, Category: "restaurants", Aggregation: domain.AggregationAverage},
			wantTotal: "40.13",
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans, err := s.Aggregate(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, ans.Total.StringFixed(2))
			assert.Equal(t, tt.wantCount, ans.Count)
		})
	}
}

func TestMemoryStore_AggregateNoMatchIsZeroNotError(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	ans, err := s.Aggregate(context.Background(), QueryRequest{ClientID: 2, Merchant: "Nobu"})
	require.NoError(t, err)
	assert.True(t, ans.Total.IsZero())
	assert.Equal(t, int64(0), ans.Count)
}

func TestMemoryStore_ClientScoping(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	ans, err := s.Aggregate(context.Background(), QueryRequest{ClientID: 3, Category: "restaurants"})
	require.NoError(t, err)
	assert.Equal(t, "999.99", ans.Total.StringFixed(2))
	assert.Equal(t, int64(1), ans.Count)
}

func TestMemoryStore_Merchants(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	names, err := s.Merchants(context.Background(), 2)
	require.NoError(t, err)
	// Sorted, deduplicated, "Unknown" placeholder excluded.
	assert.Equal(t, []string{"Amazon", "Starbucks"}, names)
}

func TestMemoryStore_LatestDate(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	latest, err := s.LatestDate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 10, latest.Day())

	_, err = s.LatestDate(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUnknownClient)
}

func TestMemoryStore_ClientSummary(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	summary, err := s.ClientSummary(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TransactionCount)
	assert.Equal(t, "400.25", summary.TotalSpending.StringFixed(2))
	assert.Equal(t, time.August, summary.FirstTransaction.Month())
	assert.Equal(t, time.September, summary.LastTransaction.Month())

	_, err = s.ClientSummary(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUnknownClient)
}

func TestMemoryStore_Clients(t *testing.T) {
	s := NewMemoryStore(testTransactions())

	summaries, err := s.Clients(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].ClientID)
	assert.Equal(t, 3, summaries[1].ClientID)
}
