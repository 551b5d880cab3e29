package scene

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/dom"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
)

// ErrPublishSkipped is returned by Step when a tick failed and no snapshot was published.
var ErrPublishSkipped = errors.New("scene: publish skipped")

// DefaultParallelThreshold is the element count at which updates fan out to the worker pool.
const DefaultParallelThreshold = 64

// State is the lifecycle state of a Scene.
type State int

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Scene owns the authoritative element map and the timeline clock. Each tick it
// advances every element to the current time, clones the result and publishes it
// into the DOM. Only the goroutine driving the scene touches the live elements.
type Scene interface {
	// Add registers an element. Elements without an ID are assigned the next free one.
	// Adding an element whose ID is already registered replaces the previous one.
	//
	// Parameters:
	//   - el: the element to add (must not be nil)
	//
	// Returns:
	//   - uint32: the element's ID
	Add(el element.Element) uint32

	// Get returns the element registered under id, or nil.
	Get(id uint32) element.Element

	// MustGet returns the element registered under id and panics if there is none.
	MustGet(id uint32) element.Element

	// Has reports whether id is registered.
	Has(id uint32) bool

	// Count returns the number of registered elements.
	Count() int

	// IDs returns the registered element IDs in ascending order.
	IDs() []uint32

	// State returns the lifecycle state.
	State() State

	// Start moves the scene from Idle to Running and starts the clock. Later calls are no-ops.
	Start()

	// TimeSinceStart returns the monotonic time since Start, or zero while Idle.
	TimeSinceStart() time.Duration

	// Duration returns the timeline length in seconds: the configured duration, or the
	// latest keyframe end across all elements.
	Duration() float64

	// Step advances every element to t, clones the result and commits it to the DOM.
	// A panic during the tick is recovered and reported as ErrPublishSkipped; the
	// previous snapshot stays published.
	//
	// Parameters:
	//   - t: seconds since the timeline started
	//
	// Returns:
	//   - error: ErrPublishSkipped, possibly wrapping dom.ErrClosed
	Step(t float64) error

	// Tick calls Step with the current TimeSinceStart.
	Tick() error

	// Run starts the scene and ticks it at the configured rate until ctx is done or the DOM is closed.
	//
	// Parameters:
	//   - ctx: cancellation for the tick loop
	//
	// Returns:
	//   - error: ctx.Err() or the error that stopped the loop
	Run(ctx context.Context) error

	// SetTickRate sets the tick rate in ticks per second. A running loop picks it up on its next iteration.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// DOM returns the snapshot container the scene publishes into.
	DOM() dom.DOM
}

type scene struct {
	mu *sync.RWMutex

	d        dom.DOM
	elements map[uint32]element.Element
	ids      []uint32
	nextID   uint32

	state     State
	startedAt time.Time
	duration  float64

	tickRate        time.Duration
	tickRateChannel chan time.Duration
	running         atomic.Bool

	// pool runs element updates once the scene reaches parallelThreshold elements.
	// Workers persist between ticks; a WaitGroup is the per-tick barrier.
	pool              worker.DynamicWorkerPool
	workers           int
	parallelThreshold int

	logger zerolog.Logger

	meter        metric.Meter
	ticks        metric.Int64Counter
	skipped      metric.Int64Counter
	tickDuration metric.Float64Histogram
}

var _ Scene = &scene{}

// NewScene creates an Idle Scene publishing into d. Panics if d is nil.
//
// Parameters:
//   - d: the DOM snapshots are committed to (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(d dom.DOM, options ...SceneBuilderOption) Scene {
	if d == nil {
		panic("scene: NewScene requires a non-nil DOM")
	}

	s := &scene{
		mu:                &sync.RWMutex{},
		d:                 d,
		elements:          make(map[uint32]element.Element),
		nextID:            1,
		state:             StateIdle,
		tickRate:          time.Second / 60,
		tickRateChannel:   make(chan time.Duration, 1),
		workers:           max(runtime.NumCPU()-1, 1),
		parallelThreshold: DefaultParallelThreshold,
		logger:            common.Logger().With().Str("component", "scene").Logger(),
		meter:             meter(),
	}

	for _, option := range options {
		option(s)
	}

	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)

	var err error
	s.ticks, err = s.meter.Int64Counter(
		"smoothie.scene.ticks",
		metric.WithDescription("Total snapshots published"),
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create ticks counter: %v", err))
	}
	s.skipped, err = s.meter.Int64Counter(
		"smoothie.scene.publish.skipped",
		metric.WithDescription("Total ticks whose snapshot was not published"),
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create skipped counter: %v", err))
	}
	s.tickDuration, err = s.meter.Float64Histogram(
		"smoothie.scene.tick.duration",
		metric.WithDescription("Time spent updating and publishing one tick"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Sprintf("scene: failed to create tick duration histogram: %v", err))
	}

	return s
}

func (s *scene) Add(el element.Element) uint32 {
	if el == nil {
		panic("scene: cannot Add a nil Element")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(el)
}

// add registers el. Callers must hold the write lock.
func (s *scene) add(el element.Element) uint32 {
	id := el.ID()
	if id == 0 {
		for s.elements[s.nextID] != nil {
			s.nextID++
		}
		id = s.nextID
		el.SetID(id)
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	if _, exists := s.elements[id]; !exists {
		idx, _ := slices.BinarySearch(s.ids, id)
		s.ids = slices.Insert(s.ids, idx, id)
	}
	s.elements[id] = el
	return id
}

func (s *scene) Get(id uint32) element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elements[id]
}

func (s *scene) MustGet(id uint32) element.Element {
	el := s.Get(id)
	if el == nil {
		panic(fmt.Sprintf("scene: no element registered with id %d", id))
	}
	return el
}

func (s *scene) Has(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.elements[id]
	return ok
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

func (s *scene) IDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

func (s *scene) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *scene) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return
	}
	s.state = StateRunning
	s.startedAt = time.Now()
	s.logger.Debug().Int("elements", len(s.elements)).Msg("scene started")
}

func (s *scene) TimeSinceStart() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateIdle {
		return 0
	}
	return time.Since(s.startedAt)
}

func (s *scene) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.duration > 0 {
		return s.duration
	}
	var end float64
	for _, el := range s.elements {
		end = max(end, el.TimelineEnd())
	}
	return end
}

func (s *scene) DOM() dom.DOM {
	return s.d
}

func (s *scene) Step(t float64) (err error) {
	begin := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Float64("t", t).Msg("scene tick recovered from panic, snapshot not published")
			s.skipped.Add(context.Background(), 1)
			err = fmt.Errorf("%w: %v", ErrPublishSkipped, r)
		}
	}()

	s.update(t)

	snapshot := make(map[uint32]element.Element, len(s.elements))
	for id, el := range s.elements {
		snapshot[id] = el.Clone()
	}

	if _, cerr := s.d.Commit(snapshot, t); cerr != nil {
		s.skipped.Add(context.Background(), 1)
		return fmt.Errorf("%w: %w", ErrPublishSkipped, cerr)
	}

	s.ticks.Add(context.Background(), 1)
	s.tickDuration.Record(context.Background(), time.Since(begin).Seconds())
	return nil
}

// update applies keyframes to every element at t, fanning out to the worker pool for large scenes.
// A panic inside a worker is re-raised on the calling goroutine after the barrier.
func (s *scene) update(t float64) {
	if len(s.ids) < s.parallelThreshold || s.workers <= 1 {
		for _, id := range s.ids {
			s.elements[id].UpdateWithKeyframes(t)
		}
		return
	}

	var (
		wg      sync.WaitGroup
		failure atomic.Pointer[any]
	)
	for i, id := range s.ids {
		el := s.elements[id]
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						failure.CompareAndSwap(nil, &r)
					}
				}()
				el.UpdateWithKeyframes(t)
				return nil, nil
			},
		})
	}
	wg.Wait()

	if p := failure.Load(); p != nil {
		panic(*p)
	}
}

func (s *scene) Tick() error {
	return s.Step(s.TimeSinceStart().Seconds())
}

func (s *scene) Run(ctx context.Context) error {
	s.Start()
	s.running.Store(true)
	defer s.running.Store(false)

	s.mu.RLock()
	rate := s.tickRate
	s.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	if err := s.Tick(); errors.Is(err, dom.ErrClosed) {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.Tick(); errors.Is(err, dom.ErrClosed) {
				return err
			}
		case newRate := <-s.tickRateChannel:
			ticker.Reset(newRate)
			s.mu.Lock()
			s.tickRate = newRate
			s.mu.Unlock()
		}
	}
}

func (s *scene) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !s.running.Load() {
		s.mu.Lock()
		s.tickRate = newRate
		s.mu.Unlock()
		return
	}

	// replace any pending update that the loop has not consumed yet
	select {
	case s.tickRateChannel <- newRate:
	default:
		select {
		case <-s.tickRateChannel:
		default:
		}
		s.tickRateChannel <- newRate
	}
}
