package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStashWatchNotifiesOnlyChangedRefs(t *testing.T) {
	s := NewStash()
	a := Ref{Table: "T", Key: "a"}
	b := Ref{Table: "T", Key: "b"}

	var aHits, bHits atomic.Int32
	cancelA := s.Watch([]Ref{a}, func() { aHits.Add(1) })
	defer cancelA()
	cancelB := s.Watch([]Ref{b}, func() { bHits.Add(1) })
	defer cancelB()

	changed := s.Apply(Snapshot{a: 1, b: 1})
	assert.Len(t, changed, 2)
	assert.Equal(t, int32(1), aHits.Load())
	assert.Equal(t, int32(1), bHits.Load())

	changed = s.Apply(Snapshot{a: 2, b: 1})
	assert.Equal(t, []Ref{a}, changed)
	assert.Equal(t, int32(2), aHits.Load())
	assert.Equal(t, int32(1), bHits.Load())

	changed = s.Apply(Snapshot{a: 2})
	assert.Equal(t, []Ref{b}, changed)
	assert.Equal(t, int32(2), bHits.Load())
}

func TestStashWatchCoalescesPerWatcher(t *testing.T) {
	s := NewStash()
	a := Ref{Table: "T", Key: "a"}
	b := Ref{Table: "T", Key: "b"}

	var hits atomic.Int32
	cancel := s.Watch([]Ref{a, b}, func() { hits.Add(1) })
	defer cancel()

	s.Apply(Snapshot{a: 1, b: 2})
	assert.Equal(t, int32(1), hits.Load())
}

func TestStashCancelStopsNotifications(t *testing.T) {
	s := NewStash()
	a := Ref{Table: "T", Key: "a"}

	var hits atomic.Int32
	cancel := s.Watch([]Ref{a}, func() { hits.Add(1) })
	cancel()
	cancel()

	s.Put(a, 1)
	assert.Equal(t, int32(0), hits.Load())
}

func TestStashPutAndDelete(t *testing.T) {
	s := NewStash()
	a := Ref{Table: "T", Key: "a"}

	var hits atomic.Int32
	cancel := s.Watch([]Ref{a}, func() { hits.Add(1) })
	defer cancel()

	s.Put(a, "x")
	s.Put(a, "x")
	assert.Equal(t, int32(1), hits.Load())

	v, ok := s.Get(a)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	s.Delete(a)
	s.Delete(a)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, 0, s.Len())
}

func TestStashView(t *testing.T) {
	s := NewStash()
	a := Ref{Table: "T", Key: "a"}
	s.Put(a, 7)

	s.View(func(r Reader) {
		v, ok := r.Get(a)
		require.True(t, ok)
		assert.Equal(t, 7, v)
		_, ok = r.Get(Ref{Table: "T", Key: "missing"})
		assert.False(t, ok)
	})
}

type fakeLoader struct {
	snapshots []Snapshot
	calls     atomic.Int32
	err       error
}

func (f *fakeLoader) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	n := int(f.calls.Add(1)) - 1
	if f.err != nil {
		return nil, f.err
	}
	if n >= len(f.snapshots) {
		n = len(f.snapshots) - 1
	}
	return f.snapshots[n], nil
}

func TestPollerSyncsOnTrigger(t *testing.T) {
	a := Ref{Table: "T", Key: "a"}
	loader := &fakeLoader{snapshots: []Snapshot{{a: 1}, {a: 2}}}
	stash := NewStash()
	trigger := make(chan struct{})

	p := &Poller{Loader: loader, Stash: stash, Trigger: trigger}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		v, _ := stash.Get(a)
		return v == 1
	}, time.Second, 5*time.Millisecond)

	trigger <- struct{}{}
	require.Eventually(t, func() bool {
		v, _ := stash.Get(a)
		return v == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollerInitialSyncError(t *testing.T) {
	boom := errors.New("boom")
	p := &Poller{Loader: &fakeLoader{err: boom}, Stash: NewStash()}
	err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
