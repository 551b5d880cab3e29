// Package smoothie is the authoring surface of the animation engine.
//
// A Smoothie creates elements, schedules keyframed property transitions on a logical
// timeline cursor and finally hands everything to Serve, which animates and renders
// the result in a window or headlessly into PNG frames.
//
//	s := smoothie.New()
//	arrow := s.Arrow()
//	_ = s.Animate(arrow, element.Scale, 2, smoothie.Over(time.Second), smoothie.Ease(easing.EaseInOut))
//	_ = s.Animate(arrow, element.Angle, math.Pi, smoothie.Over(500*time.Millisecond))
//	err := s.Serve(ctx)
package smoothie

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/dom"
	"github.com/Carmen-Shannon/smoothie/engine/element"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/Carmen-Shannon/smoothie/engine/scene"
	"github.com/Carmen-Shannon/smoothie/engine/stream"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
)

// Smoothie builds one animation session. It is safe for concurrent use while authoring,
// but every declaration after Serve panics.
type Smoothie struct {
	mu *sync.Mutex

	dom   dom.DOM
	scene scene.Scene

	// elements holds every element this Smoothie allocated an id for.
	elements map[uint32]element.Element
	nextID   uint32
	cursor   time.Duration
	served   bool

	tickRate          float64
	renderFrameLimit  float64
	headless          bool
	outputDir         string
	width             int
	height            int
	title             string
	primitiveCapacity int
	presentMode       renderer.PresentMode
	msaa              renderer.MSAASampleCount
	profiling         bool
	sink              stream.Sink
	workers           int
	clearColor        colorful.Color

	logger zerolog.Logger
}

// New creates a Smoothie with a 1280x720 window at 60 ticks per second.
//
// Parameters:
//   - options: functional options to configure the session
//
// Returns:
//   - *Smoothie: the builder
func New(options ...SmoothieBuilderOption) *Smoothie {
	s := &Smoothie{
		mu:                &sync.Mutex{},
		elements:          make(map[uint32]element.Element),
		tickRate:          60,
		width:             1280,
		height:            720,
		title:             "smoothie",
		primitiveCapacity: renderer.DefaultPrimitiveCapacity,
		presentMode:       renderer.PresentModeVSync,
		msaa:              renderer.MSAA4x,
		clearColor:        colorful.Color{R: 1, G: 1, B: 1},
		logger:            common.Logger().With().Str("component", "smoothie").Logger(),
	}
	for _, option := range options {
		option(s)
	}

	sceneOptions := []scene.SceneBuilderOption{
		scene.WithTickRate(s.tickRate),
		scene.WithLogger(s.logger),
	}
	if s.workers > 0 {
		sceneOptions = append(sceneOptions, scene.WithWorkers(s.workers))
	}
	s.dom = dom.NewDOM()
	s.scene = scene.NewScene(s.dom, sceneOptions...)
	return s
}

// Arrow creates an arrow element with the next id. It joins the scene the first time it is animated.
//
// Parameters:
//   - options: element options (position, fill, ...); any id option is overridden
//
// Returns:
//   - *element.Arrow: the new arrow
func (s *Smoothie) Arrow(options ...element.ElementBuilderOption) *element.Arrow {
	a := element.NewArrow(options...)
	s.allocate(a, "Arrow")
	return a
}

// Circle creates a circle element with the next id. It joins the scene the first time it is animated.
//
// Parameters:
//   - radius: the radius in world units
//   - options: element options; any id option is overridden
//
// Returns:
//   - *element.Circle: the new circle
func (s *Smoothie) Circle(radius float64, options ...element.ElementBuilderOption) *element.Circle {
	c := element.NewCircle(radius, options...)
	s.allocate(c, "Circle")
	return c
}

// Rectangle creates a rectangle element with the next id. It joins the scene the first time it is animated.
//
// Parameters:
//   - width, height: the size in world units
//   - options: element options; any id option is overridden
//
// Returns:
//   - *element.Rectangle: the new rectangle
func (s *Smoothie) Rectangle(width, height float64, options ...element.ElementBuilderOption) *element.Rectangle {
	r := element.NewRectangle(width, height, options...)
	s.allocate(r, "Rectangle")
	return r
}

// Add registers an element in the scene right away, so it is drawn even if it is never
// animated. Elements not created by this Smoothie (custom Element implementations) get
// the next id; adding an element twice is a no-op.
//
// Parameters:
//   - el: the element to add (must not be nil)
//
// Returns:
//   - uint32: the element's id
func (s *Smoothie) Add(el element.Element) uint32 {
	if el == nil {
		panic("smoothie: Add requires a non-nil element")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustAuthor("Add")

	id := el.ID()
	if owned, ok := s.elements[id]; !ok || owned != el {
		id = s.allocateLocked(el)
	}
	if !s.scene.Has(id) {
		s.scene.Add(el)
	}
	return id
}

// Scene returns the scene the session animates. Intended for inspection and tests.
//
// Returns:
//   - scene.Scene: the scene
func (s *Smoothie) Scene() scene.Scene {
	return s.scene
}

// TimeSinceStart returns the timeline clock, zero until Serve starts the session.
//
// Returns:
//   - time.Duration: monotonic time since the session started
func (s *Smoothie) TimeSinceStart() time.Duration {
	return s.scene.TimeSinceStart()
}

// Cursor returns the point on the timeline where the next sequenced animation starts.
//
// Returns:
//   - time.Duration: the cursor
func (s *Smoothie) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor moves the cursor. Negative values are clamped to zero.
//
// Parameters:
//   - t: the new cursor position
func (s *Smoothie) SetCursor(t time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustAuthor("SetCursor")
	s.cursor = max(t, 0)
}

// Wait advances the cursor by d without scheduling anything, leaving a pause before
// the next sequenced animation.
//
// Parameters:
//   - d: the pause length (negative values move the cursor back, never below zero)
func (s *Smoothie) Wait(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustAuthor("Wait")
	s.cursor = max(s.cursor+d, 0)
}

func (s *Smoothie) allocate(el element.Element, op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustAuthor(op)
	s.allocateLocked(el)
}

// allocateLocked assigns the next id. Callers must hold the mutex.
func (s *Smoothie) allocateLocked(el element.Element) uint32 {
	s.nextID++
	for s.scene.Has(s.nextID) {
		s.nextID++
	}
	el.SetID(s.nextID)
	s.elements[s.nextID] = el
	return s.nextID
}

// mustOwn panics unless el was allocated by this Smoothie. Callers must hold the mutex.
func (s *Smoothie) mustOwn(el element.Element, op string) uint32 {
	if el == nil {
		panic(fmt.Sprintf("smoothie: %s requires a non-nil element", op))
	}
	id := el.ID()
	if owned, ok := s.elements[id]; !ok || owned != el {
		panic(fmt.Sprintf("smoothie: %s target %d was not created by this Smoothie", op, id))
	}
	return id
}

// mustAuthor panics once Serve has been called. Callers must hold the mutex.
func (s *Smoothie) mustAuthor(op string) {
	if s.served {
		panic(fmt.Sprintf("smoothie: %s called after Serve", op))
	}
}
