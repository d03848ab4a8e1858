package core

import "context"

type contextKey string

const ctxKeyClient contextKey = "client"

// Client identifies who issued a request. It is attached by the HTTP layer
// and recorded with exports.
type Client struct {
	IP        string
	UserAgent string
	Owner     string
}

// ContextWithClient adds client metadata to ctx.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, ctxKeyClient, c)
}

// ClientFromContext extracts client metadata from ctx.
// Returns the zero Client if none was attached.
func ClientFromContext(ctx context.Context) Client {
	if c, ok := ctx.Value(ctxKeyClient).(Client); ok {
		return c
	}
	return Client{}
}
