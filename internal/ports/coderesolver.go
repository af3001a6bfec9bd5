package ports

import "context"

// CodeResolver maps an opaque short code to a tenant identifier.
type CodeResolver interface {
	// Resolve MUST return types.ErrNotFound when the code is unknown and types.ErrResolution when the
	// lookup itself failed.
	Resolve(ctx context.Context, code string) (string, error)

	// Exists reports whether Resolve succeeds. Both ErrNotFound and ErrResolution yield false.
	Exists(ctx context.Context, code string) bool
}
