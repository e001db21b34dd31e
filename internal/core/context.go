package core

import "context"

type contextKey string

const (
	ctxKeyOwner     contextKey = "import_owner"
	ctxKeyIPAddress contextKey = "client_ip"
)

// ContextWithOwner stores the authenticated owner on ctx. Only transport
// middleware should call it; the importer takes the owner as a parameter.
func ContextWithOwner(ctx context.Context, owner OwnerContext) context.Context {
	return context.WithValue(ctx, ctxKeyOwner, owner)
}

// OwnerFromContext returns the owner placed by ContextWithOwner.
func OwnerFromContext(ctx context.Context) (OwnerContext, bool) {
	owner, ok := ctx.Value(ctxKeyOwner).(OwnerContext)
	return owner, ok
}

// ContextWithIPAddress records the client address for logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// IPAddressFromContext extracts the client address, or "".
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
