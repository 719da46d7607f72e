package store

import "context"

// Ref addresses a single record: a logical table name and an encoded key.
type Ref struct {
	Table string
	Key   string
}

func (r Ref) String() string {
	return r.Table + "/" + r.Key
}

// Snapshot is a point-in-time copy of every known record.
type Snapshot map[Ref]any

type Reader interface {
	Get(ref Ref) (any, bool)
}

// Source is the reactive record store the resolver reads from.
type Source interface {
	// View runs fn against a consistent snapshot; fn must not call back into the Source.
	View(fn func(r Reader))
	// Watch calls notify whenever the value behind any of refs changes.
	Watch(refs []Ref, notify func()) (cancel func())
}

type Loader interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
}

type Backend interface {
	Loader
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

func (s Snapshot) Get(ref Ref) (any, bool) {
	v, ok := s[ref]
	return v, ok
}
