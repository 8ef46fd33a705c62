package core

import "context"

type contextKey string

const ctxKeyClientIP contextKey = "client_ip"

// ContextWithClientIP records the requesting client's address for run logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ClientIPFromContext extracts the client address, or "" when unset.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}
