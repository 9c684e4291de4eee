package api

import (
	"context"
	"time"
)

// QueryTimeout bounds every mongo query issued by a handler
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a query-scoped context from the request context.
// Background jobs with no request pass nil.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
