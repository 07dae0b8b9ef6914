package userauth

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's source address to ctx. The Manager
// uses it as half of the throttle key and for audit events; without it,
// throttle records key on the login identifier alone.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
