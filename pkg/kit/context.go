package kit

import "context"

type contextKey string

const (
	OfficerKey   contextKey = "kit_officer"
	RoleKey      contextKey = "kit_role"      // "admin", "officer", ""
	TransportKey contextKey = "kit_transport" // "http", "mcp_quic"
	RequestIDKey contextKey = "kit_request_id"
)

// WithOfficer records the authenticated officer name behind the request.
func WithOfficer(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, OfficerKey, name)
}
func GetOfficer(ctx context.Context) string {
	v, _ := ctx.Value(OfficerKey).(string)
	return v
}

// WithRole records the caller's role as injected by the outer auth layer.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}
func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(RoleKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}
