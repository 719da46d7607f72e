// Package resolver keeps a composed smart assembly up to date for one entity
// id at a time. A single goroutine owns all session state: it reacts to
// entity changes, owner lookup completions, and record store notifications,
// and re-emits the composed result after every pass.
package resolver

import (
	"context"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"smartassembly/internal/chain"
	"smartassembly/internal/metrics"
	"smartassembly/internal/store"
)

// OwnerLookup resolves the owner address of a smart object on a chain.
type OwnerLookup interface {
	LookupOwner(ctx context.Context, chainID uint64, smartObjectID *big.Int) (string, error)
}

type Resolver struct {
	src     store.Source
	owners  OwnerLookup
	chainID uint64
	log     logrus.FieldLogger
	metrics *metrics.Resolver

	entityCh chan *big.Int
	ownerCh  chan ownerResult
	changed  chan struct{}
	results  chan Result

	mu      sync.Mutex
	current *Result
}

type Option func(*Resolver)

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Resolver) { r.log = log }
}

func WithMetrics(m *metrics.Resolver) Option {
	return func(r *Resolver) { r.metrics = m }
}

func New(src store.Source, owners OwnerLookup, chainID uint64, opts ...Option) *Resolver {
	r := &Resolver{
		src:      src,
		owners:   owners,
		chainID:  chainID,
		log:      logrus.StandardLogger(),
		entityCh: make(chan *big.Int, 1),
		ownerCh:  make(chan ownerResult),
		changed:  make(chan struct{}, 1),
		results:  make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithFields(logrus.Fields{
		"session":  uuid.NewString(),
		"chain_id": chainID,
	})
	return r
}

// SetEntity switches the resolver to a new entity id. Only the most recent
// id matters; setting the current id again is a no-op.
func (r *Resolver) SetEntity(id *big.Int) {
	id = new(big.Int).Set(id)
	for {
		select {
		case r.entityCh <- id:
			return
		default:
		}
		select {
		case <-r.entityCh:
		default:
		}
	}
}

// Results delivers the latest result. A slow reader skips intermediate
// results and always receives the newest one.
func (r *Resolver) Results() <-chan Result {
	return r.results
}

// Current returns the most recently emitted result.
func (r *Resolver) Current() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Result{}, false
	}
	return *r.current, true
}

// session is the state of one entity id. It is only touched by Run.
type session struct {
	entity       *big.Int
	generation   uint64
	owner        owner
	cancelLookup context.CancelFunc
	watched      []store.Ref
	cancelWatch  func()
	log          logrus.FieldLogger
}

func (s *session) close() {
	if s.cancelLookup != nil {
		s.cancelLookup()
	}
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
}

// Run processes events until ctx is done.
func (r *Resolver) Run(ctx context.Context) error {
	s := &session{log: r.log}
	defer s.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case id := <-r.entityCh:
			if s.entity != nil && s.entity.Cmp(id) == 0 {
				continue
			}
			if s.cancelLookup != nil {
				s.cancelLookup()
			}
			s.generation++
			s.entity = id
			s.owner = owner{}
			s.log = r.log.WithField("smart_object_id", id.String())

			lookupCtx, cancel := context.WithCancel(ctx)
			s.cancelLookup = cancel
			go r.lookupOwner(ctx, lookupCtx, s.generation, id)

			r.recompute(s)

		case res := <-r.ownerCh:
			if res.generation != s.generation {
				r.metrics.OwnerLookup(metrics.OwnerDiscarded)
				r.log.WithField("smart_object_id", res.id.String()).Debug("discarding owner for superseded entity")
				continue
			}
			s.owner = r.settleOwner(s.log, res)
			r.recompute(s)

		case <-r.changed:
			if s.entity != nil {
				r.recompute(s)
			}
		}
	}
}

// lookupOwner performs the remote lookup for one generation. The result is
// delivered even when superseded so the loop can account for it.
func (r *Resolver) lookupOwner(runCtx, ctx context.Context, generation uint64, id *big.Int) {
	address, err := r.owners.LookupOwner(ctx, r.chainID, id)
	select {
	case r.ownerCh <- ownerResult{generation: generation, id: id, address: address, err: err}:
	case <-runCtx.Done():
	}
}

func (r *Resolver) settleOwner(log logrus.FieldLogger, res ownerResult) owner {
	if res.err != nil {
		r.metrics.OwnerLookup(metrics.OwnerFailed)
		log.WithError(res.err).Warn("owner lookup failed")
		return owner{status: OwnerUnavailable}
	}
	address, err := chain.ChecksumAddress(res.address)
	if err != nil {
		r.metrics.OwnerLookup(metrics.OwnerFailed)
		log.WithError(err).Warn("indexer returned an unusable owner")
		return owner{status: OwnerUnavailable}
	}
	r.metrics.OwnerLookup(metrics.OwnerResolved)
	log.WithField("owner", address).Info("owner resolved")
	return owner{status: OwnerResolved, address: address}
}

// recompute runs passes until the set of refs read is stable, re-watching
// whenever it changes, then emits the final pass.
func (r *Resolver) recompute(s *session) {
	for {
		var (
			res  Result
			refs []store.Ref
		)
		r.src.View(func(rd store.Reader) {
			tr := newTrackingReader(rd)
			res = resolve(tr, r.chainID, s.entity, s.owner)
			refs = tr.refs
		})
		r.metrics.Recomputed()

		if sameRefs(refs, s.watched) {
			r.emit(s.log, res)
			return
		}
		if s.cancelWatch != nil {
			s.cancelWatch()
		}
		s.watched = refs
		s.cancelWatch = r.src.Watch(refs, r.notify)
	}
}

func (r *Resolver) notify() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *Resolver) emit(log logrus.FieldLogger, res Result) {
	state := "pending"
	switch {
	case res.Variant != nil:
		state = "variant"
	case res.Base != nil:
		state = "base"
	}
	r.metrics.Emitted(state)
	log.WithFields(logrus.Fields{
		"owner_status": res.OwnerStatus,
		"result":       state,
	}).Debug("result emitted")

	for sent := false; !sent; {
		select {
		case r.results <- res:
			sent = true
		default:
			select {
			case <-r.results:
			default:
			}
		}
	}

	r.mu.Lock()
	r.current = &res
	r.mu.Unlock()
}

func sameRefs(a, b []store.Ref) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[store.Ref]struct{}, len(a))
	for _, ref := range a {
		set[ref] = struct{}{}
	}
	for _, ref := range b {
		if _, ok := set[ref]; !ok {
			return false
		}
	}
	return true
}

// Await resolves id once: it returns the first result carrying a base
// entity, or the first result whose owner is unavailable. If ctx ends first
// the latest result is returned with ctx's error.
func Await(ctx context.Context, src store.Source, owners OwnerLookup, chainID uint64, id *big.Int, opts ...Option) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := New(src, owners, chainID, opts...)
	go func() { _ = r.Run(ctx) }()
	r.SetEntity(id)

	var last Result
	for {
		select {
		case res := <-r.Results():
			last = res
			if res.Base != nil || res.OwnerStatus == OwnerUnavailable {
				return res, nil
			}
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}
}
