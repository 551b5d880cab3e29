package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/profiler"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/Carmen-Shannon/smoothie/engine/scene"
	"github.com/Carmen-Shannon/smoothie/engine/stream"
	"github.com/Carmen-Shannon/smoothie/engine/window"
	"github.com/rs/zerolog"
)

// idleWait is how long the render loop backs off when no new snapshot is available
// and there is no window to redraw.
const idleWait = time.Millisecond

// engine implements the Engine interface.
// Coordinates the animation, render and window threads of one session.
type engine struct {
	mu *sync.Mutex

	running bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	scene    scene.Scene
	renderer renderer.Renderer
	window   window.Window
	sink     stream.Sink

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	stopAtEnd        bool
	duration         float64

	frames uint64
	err    error

	logger zerolog.Logger
}

// Engine runs one animation session.
// The animation goroutine ticks the scene, which publishes snapshots into its DOM;
// the render goroutine copies the newest snapshot out once per frame and renders it.
// When a window is attached the calling goroutine pumps its messages.
type Engine interface {
	// Scene returns the scene driven by the animation goroutine.
	//
	// Returns:
	//   - scene.Scene: the session scene
	Scene() scene.Scene

	// Renderer returns the renderer driven by the render goroutine.
	//
	// Returns:
	//   - renderer.Renderer: the session renderer
	Renderer() renderer.Renderer

	// Window returns the attached window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the scene tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of frames rendered so far.
	//
	// Returns:
	//   - uint64: rendered frame count
	Frames() uint64

	// Run starts the session and blocks until the window closes, ctx is cancelled,
	// Quit is called, a fatal renderer error occurs or, with stop-at-end enabled,
	// the timeline has been rendered to its end.
	// Must be called from the main goroutine when a window is attached.
	//
	// Parameters:
	//   - ctx: cancellation for the whole session
	//
	// Returns:
	//   - error: the fatal error that ended the session, or nil
	Run(ctx context.Context) error

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times and from any goroutine; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a session engine for the given scene and renderer.
// Panics if either is nil.
//
// Parameters:
//   - s: the scene to animate
//   - r: the renderer that draws the scene's snapshots
//   - options: functional options for engine configuration (window, sink, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(s scene.Scene, r renderer.Renderer, options ...EngineBuilderOption) Engine {
	if s == nil {
		panic("engine: NewEngine requires a non-nil scene")
	}
	if r == nil {
		panic("engine: NewEngine requires a non-nil renderer")
	}

	e := &engine{
		mu:               &sync.Mutex{},
		quitChannel:      make(chan struct{}),
		scene:            s,
		renderer:         r,
		profilingEnabled: false,
		logger:           common.Logger().With().Str("component", "engine").Logger(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.wireWindow()
	}

	return e
}

// wireWindow routes window events into the renderer, the camera controller and Quit.
func (e *engine) wireWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if ctrl := e.renderer.Camera().Controller(); ctrl != nil {
			ctrl.HandleKey(keyCode)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.renderer.Camera().Controller(); ctrl != nil {
			ctrl.ZoomBy(delta)
		}
	})
	e.window.SetCloseCallback(e.Quit)
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return errors.New("engine: already running")
	}
	e.running = true
	// The timeline is fixed once the session starts.
	e.duration = e.scene.Duration()
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	defer cancel()

	e.logger.Info().
		Float64("duration", e.duration).
		Int("elements", e.scene.Count()).
		Stringer("backend", e.renderer.BackendType()).
		Bool("window", e.window != nil).
		Msg("session starting")

	e.handle(ctx)

	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}

	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.logger.Info().Uint64("frames", e.frames).Err(e.err).Msg("session ended")
	return e.err
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// fail records the first fatal error and quits.
func (e *engine) fail(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
	e.signalQuit()
}

// handle launches the animation, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle(ctx context.Context) {
	e.wg.Add(3)
	go e.handleAnimation(ctx)
	go e.handleRender(ctx)
	go e.handleQuit(ctx)
}

// handleAnimation ticks the scene until the session context is cancelled.
// A scene that stops on its own (closed DOM) ends the session.
func (e *engine) handleAnimation(ctx context.Context) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("animation goroutine recovered from panic")
			e.fail(fmt.Errorf("engine: animation goroutine panicked: %v", r))
		}
	}()

	err := e.scene.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn().Err(err).Msg("scene stopped")
	}
	e.signalQuit()
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each iteration copies the newest snapshot out of the DOM, renders it, publishes the
// primitive buffer to the frame sink and ticks the profiler.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender(ctx context.Context) {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("render goroutine recovered from panic")
			e.fail(fmt.Errorf("engine: render goroutine panicked: %v", r))
		}
	}()

	d := e.scene.DOM()
	var lastSeq uint64

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()

		snap := d.Snapshot()
		// Without a window there is nothing to redraw until the scene publishes again.
		if e.window == nil && (snap.Seq == 0 || snap.Seq == lastSeq) {
			if !sleepCtx(ctx, idleWait) {
				return
			}
			continue
		}
		lastSeq = snap.Seq

		if err := e.renderer.Render(snap); err != nil {
			if errors.Is(err, renderer.ErrOutOfMemory) {
				e.logger.Error().Err(err).Uint64("seq", snap.Seq).Msg("renderer out of memory")
				e.fail(err)
				return
			}
			e.logger.Warn().Err(err).Uint64("seq", snap.Seq).Msg("render failed")
		} else {
			e.mu.Lock()
			e.frames++
			e.mu.Unlock()
			e.publish(ctx, snap.Seq, snap.Time)
		}

		e.mu.Lock()
		profiling, frameLimit := e.profilingEnabled, e.renderFrameLimit
		e.mu.Unlock()

		if profiling && e.profiler != nil {
			e.profiler.Tick()
		}

		if e.stopAtEnd && snap.Time >= e.duration {
			e.logger.Debug().Float64("time", snap.Time).Msg("timeline end reached")
			e.signalQuit()
			return
		}

		// Frame rate limiting
		if frameLimit > 0 {
			if remaining := frameLimit - time.Since(frameStart); remaining > 0 {
				if !sleepCtx(ctx, remaining) {
					return
				}
			}
		}
	}
}

// publish sends the current primitive buffer to the frame sink, if one is set.
// Sink failures are logged and never stop the session.
func (e *engine) publish(ctx context.Context, seq uint64, t float64) {
	if e.sink == nil {
		return
	}
	frame := stream.Frame{
		Seq:        seq,
		Time:       t,
		Primitives: e.renderer.Primitives().Bytes(),
	}
	if err := e.sink.Publish(ctx, frame); err != nil && ctx.Err() == nil {
		e.logger.Warn().Err(err).Uint64("seq", seq).Msg("frame publish failed")
	}
}

// handleQuit blocks until the quit channel is closed or the caller's context is done,
// then cancels the session context and asks the window to close.
func (e *engine) handleQuit(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-e.quitChannel:
	case <-ctx.Done():
		e.signalQuit()
	}
	e.cancel()
	if e.window != nil {
		e.window.RequestClose()
	}
}

// sleepCtx waits for d or until ctx is done. It reports whether the full wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.scene.SetTickRate(fps)
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
