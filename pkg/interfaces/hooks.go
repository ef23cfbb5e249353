package interfaces

import "context"

// Authorizer gates every mutating operation. The services call RequireWrite
// before touching storage; hosts supply the actual policy (sessions, roles,
// API keys). The default implementation allows everything.
type Authorizer interface {
	RequireWrite(ctx context.Context, resource string) error
}

// AllowAllAuthorizer satisfies Authorizer without enforcing anything. Useful
// for tests, CLIs, and hosts that gate access upstream.
type AllowAllAuthorizer struct{}

func (AllowAllAuthorizer) RequireWrite(context.Context, string) error { return nil }

// RevalidateHook is invoked after successful writes with cache tags derived
// from the touched entities (e.g. "content:treatment", "page:home"). Hosts
// use it to mark previously rendered output stale; sitekit never caches
// rendered output itself.
type RevalidateHook func(ctx context.Context, tags ...string)

// NoopRevalidate is the default RevalidateHook.
func NoopRevalidate(context.Context, ...string) {}
