package llm

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "llm_request_id"

	// requestIDHeader carries the turn ID to the provider so its logs can be correlated with ours.
	requestIDHeader = "X-Request-Id"
)

// WithRequestID attaches a request ID (normally the conversation turn ID) to the context.
func WithRequestID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request ID from context, if present.
func GetRequestID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(requestIDKey).(uuid.UUID)
	return id, ok
}

// contextAwareTransport adds the X-Request-Id header from the request context.
type contextAwareTransport struct {
	base http.RoundTripper
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id, ok := GetRequestID(req.Context())
	if !ok {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set(requestIDHeader, id.String())
	return t.base.RoundTrip(clone)
}
