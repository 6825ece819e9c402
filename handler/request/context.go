package request

import (
	"context"
)

type key int

const (
	callerKey key = iota
)

// WithCaller context with the authenticated caller identity
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// Caller authenticated caller identity from context
func Caller(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(callerKey).(string)
	return caller, ok && caller != ""
}
