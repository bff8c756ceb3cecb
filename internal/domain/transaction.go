package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one persisted transaction record.
// Amount is signed: negative for debits, positive for credits.
// Spending aggregates always use the absolute amount.
type Transaction struct {
	ClientID    int
	TxnID       int64
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Category    string
	Merchant    string
}

// AggregateAnswer is the result of one aggregate query against the
// transaction store. Total is the aggregated value in the intent's
// aggregation sense (sum or average of absolute amounts); Count is the
// number of matching rows. A query with no matching rows yields
// {Total: 0, Count: 0}, never an error.
type AggregateAnswer struct {
	Total   decimal.Decimal
	Count   int64
	Matched Intent
}

// ClientSummary describes one client's dataset.
type ClientSummary struct {
	ClientID         int
	TransactionCount int64
	TotalSpending    decimal.Decimal
	FirstTransaction time.Time
	LastTransaction  time.Time
}
