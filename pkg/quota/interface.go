package quota

import (
	"context"

	"github.com/terminus-io/hccdu/pkg/identity"
)

// Source is a quota backend. Fetch returns the caller's records for one mount
// ordered [primary user, primary group, supplementary groups...]. An empty
// list means the backend enforces no quota on that mount.
type Source interface {
	Name() string
	Fetch(ctx context.Context, mountPoint string, id identity.Identity) ([]Record, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context, mountPoint string, id identity.Identity) ([]Record, error)
}

func (s SourceFunc) Name() string { return s.SourceName }

func (s SourceFunc) Fetch(ctx context.Context, mountPoint string, id identity.Identity) ([]Record, error) {
	return s.Fn(ctx, mountPoint, id)
}
