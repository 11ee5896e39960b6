package adapter

import (
	"context"

	"github.com/hi9ne/reviews-wb-bot-tg/internal/domain/model"
)

// ReviewSession is one store's scoped connection to the marketplace feedbacks
// API. Callers must Close it on every exit path.
type ReviewSession interface {
	// FetchPartition pages through the answered or unanswered partition until
	// a short page. Transient failures are retried; exhausting the retry
	// budget yields whatever was accumulated so far with a nil error.
	FetchPartition(ctx context.Context, answered bool) ([]model.Review, error)

	// PostAnswer submits a reply for one review id, retrying on failure.
	// A non-nil error means all attempts were exhausted.
	PostAnswer(ctx context.Context, feedbackID, text string) error

	Close()
}

// MarketplaceAdapter opens per-store review sessions. Implementations share a
// fleet-wide bound on concurrent outbound requests across all open sessions.
type MarketplaceAdapter interface {
	OpenSession(apiKey string) ReviewSession
}
