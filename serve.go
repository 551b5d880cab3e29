package smoothie

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/smoothie/engine"
	"github.com/Carmen-Shannon/smoothie/engine/camera"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/Carmen-Shannon/smoothie/engine/window"
)

// Serve hands the scene to the session engine and blocks until the session ends:
// the window closes, ctx is cancelled, the renderer fails fatally or, when headless,
// the timeline has been rendered to its end. It must be called from the main goroutine
// unless the Smoothie is headless. Serve is terminal; any later declaration panics.
//
// Parameters:
//   - ctx: cancellation for the session
//
// Returns:
//   - error: a setup failure or the fatal error that ended the session
func (s *Smoothie) Serve(ctx context.Context) error {
	s.mu.Lock()
	s.mustAuthor("Serve")
	s.served = true
	s.mu.Unlock()

	defer s.dom.Close()

	engineOptions := []engine.EngineBuilderOption{
		engine.WithRenderFrameLimit(s.renderFrameLimit),
		engine.WithProfiling(s.profiling),
		engine.WithLogger(s.logger),
	}
	if s.sink != nil {
		engineOptions = append(engineOptions, engine.WithFrameSink(s.sink))
	}

	rendererOptions := []renderer.RendererBuilderOption{
		renderer.WithPrimitiveCapacity(s.primitiveCapacity),
		renderer.WithClearColor(s.clearColor),
		renderer.WithLogger(s.logger),
	}

	var r renderer.Renderer
	if s.headless {
		var err error
		r, err = renderer.NewRenderer(renderer.BackendTypeSoftware, nil, append(rendererOptions,
			renderer.WithResolution(s.width, s.height),
			renderer.WithOutputDir(s.outputDir),
		)...)
		if err != nil {
			return fmt.Errorf("smoothie: create software renderer: %w", err)
		}
		engineOptions = append(engineOptions, engine.WithStopAtEnd(true))
	} else {
		w, err := window.NewWindow(
			window.WithTitle(s.title),
			window.WithSize(s.width, s.height),
			window.WithLogger(s.logger),
		)
		if err != nil {
			return fmt.Errorf("smoothie: create window: %w", err)
		}
		defer w.Close()

		cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))
		r, err = renderer.NewRenderer(renderer.BackendTypeWGPU, w, append(rendererOptions,
			renderer.WithPresentMode(s.presentMode),
			renderer.WithMSAA(s.msaa),
			renderer.WithCamera(cam),
		)...)
		if err != nil {
			return fmt.Errorf("smoothie: create renderer: %w", err)
		}
		engineOptions = append(engineOptions, engine.WithWindow(w))
	}
	defer r.Close()

	e := engine.NewEngine(s.scene, r, engineOptions...)
	if err := e.Run(ctx); err != nil {
		return fmt.Errorf("smoothie: session: %w", err)
	}
	return nil
}
