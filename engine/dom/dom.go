// Package dom holds the single shared snapshot the animation goroutine publishes
// and the render goroutine consumes.
package dom

import (
	"errors"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/smoothie/engine/element"
)

// ErrClosed is returned by Commit after Close.
var ErrClosed = errors.New("dom: closed")

// Snapshot is one published state of the scene.
type Snapshot struct {
	// Seq increases by one with every successful Commit. Zero means nothing was published yet.
	Seq uint64
	// Time is the timeline time, in seconds, the snapshot was computed for.
	Time float64
	// Elements maps element id to a clone owned by the snapshot.
	Elements map[uint32]element.Element
}

// Len returns the number of elements in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Elements)
}

// Clone returns a snapshot whose elements are cloned again.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Seq: s.Seq, Time: s.Time, Elements: make(map[uint32]element.Element, len(s.Elements))}
	for id, el := range s.Elements {
		out.Elements[id] = el.Clone()
	}
	return out
}

type dom struct {
	mu      *sync.RWMutex
	current Snapshot
	closed  bool
}

// DOM is the lock-guarded container for the latest Snapshot. It holds exactly one
// snapshot; every Commit replaces it whole, so a reader never observes a mix of two commits
// and a writer never waits on a reader beyond the lock itself.
type DOM interface {
	// Commit replaces the published snapshot with elements computed at time t.
	// The map is owned by the DOM afterwards and must not be touched by the caller.
	//
	// Parameters:
	//   - elements: cloned elements keyed by id
	//   - t: the timeline time in seconds
	//
	// Returns:
	//   - uint64: the sequence number of the new snapshot
	//   - error: ErrClosed if the DOM was closed
	Commit(elements map[uint32]element.Element, t float64) (uint64, error)

	// Read calls fn with the current snapshot while holding the read lock.
	// The snapshot must not be retained or mutated after fn returns.
	//
	// Parameters:
	//   - fn: the callback receiving the snapshot
	Read(fn func(Snapshot))

	// Snapshot returns a copy of the current snapshot that the caller owns.
	//
	// Returns:
	//   - Snapshot: the copied snapshot
	Snapshot() Snapshot

	// Sequence returns the sequence number of the current snapshot.
	Sequence() uint64

	// Close marks the DOM closed. Further commits fail with ErrClosed; reads still see the last snapshot.
	Close()

	// Closed reports whether Close was called.
	Closed() bool
}

var _ DOM = &dom{}

// NewDOM creates an empty DOM.
//
// Returns:
//   - DOM: the new container
func NewDOM() DOM {
	return &dom{
		mu:      &sync.RWMutex{},
		current: Snapshot{Elements: map[uint32]element.Element{}},
	}
}

func (d *dom) Commit(elements map[uint32]element.Element, t float64) (uint64, error) {
	if elements == nil {
		elements = map[uint32]element.Element{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.current.Seq, ErrClosed
	}
	d.current = Snapshot{Seq: d.current.Seq + 1, Time: t, Elements: elements}
	return d.current.Seq, nil
}

func (d *dom) Read(fn func(Snapshot)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.current)
}

func (d *dom) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	// committed elements are never mutated, so a shallow map copy is enough to own the snapshot
	return Snapshot{Seq: d.current.Seq, Time: d.current.Time, Elements: maps.Clone(d.current.Elements)}
}

func (d *dom) Sequence() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current.Seq
}

func (d *dom) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

func (d *dom) Closed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}
