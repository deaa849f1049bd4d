package grpcx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

type requestIDKey struct{}

// RequestIDMetadataKey carries the request id over gRPC metadata. gRPC
// lowercases metadata keys, so the constant is lowercase to begin with.
const RequestIDMetadataKey = "x-request-id"

// RequestIDFromContext returns the stored request id, or "" when the call
// arrived without one.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// NewRequestID mints a random 128-bit hex id.
func NewRequestID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
