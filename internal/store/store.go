// Package store provides the transaction store collaborator: aggregate
// queries over persisted transactions, always scoped to one client.
package store

import (
	"context"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

// QueryRequest is one parameterized aggregate query. Filters are
// optional; ClientID is mandatory and every implementation scopes the
// query to it server-side, independent of the dispatcher's own checks.
type QueryRequest struct {
	ClientID    int
	TimeRange   *domain.TimeRange
	Category    string
	Merchant    string
	Aggregation domain.Aggregation
}

// TransactionStore executes aggregate queries and serves the metadata
// the resolvers need (merchant vocabulary, reference dates). A query
// matching no rows returns {Total: 0, Count: 0}, not an error.
type TransactionStore interface {
	// Aggregate computes the requested aggregation over the client's
	// matching transactions, using absolute amounts for spending.
	Aggregate(ctx context.Context, req QueryRequest) (domain.AggregateAnswer, error)

	// Merchants lists the distinct merchant names appearing in the
	// client's own transactions.
	Merchants(ctx context.Context, clientID int) ([]string, error)

	// LatestDate returns the date of the client's newest transaction.
	// Returns domain.ErrUnknownClient when the client has no data.
	LatestDate(ctx context.Context, clientID int) (time.Time, error)

	// ClientSummary returns dataset statistics for one client.
	// Returns domain.ErrUnknownClient when the client has no data.
	ClientSummary(ctx context.Context, clientID int) (domain.ClientSummary, error)

	// Clients lists summaries for every client with data, ordered by id.
	Clients(ctx context.Context) ([]domain.ClientSummary, error)
}
