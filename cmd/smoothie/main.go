package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/smoothie"
	"github.com/Carmen-Shannon/smoothie/common"
	"github.com/Carmen-Shannon/smoothie/engine/easing"
	"github.com/Carmen-Shannon/smoothie/engine/renderer"
	"github.com/Carmen-Shannon/smoothie/engine/stream"
	"github.com/Carmen-Shannon/smoothie/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// ── Configuration ───────────────────────────────────────────────────
	fs := config.NewFlagSet("smoothie")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	path, _ := fs.GetString("config")
	if err := config.Load(path); err != nil {
		return err
	}
	if err := config.BindFlags(fs); err != nil {
		return err
	}
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	// ── Logging ─────────────────────────────────────────────────────────
	logger := setupLogging(cfg.LogLevel)
	common.SetLogger(&logger)

	kind, err := easing.Parse(cfg.Demo.Easing)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Session ─────────────────────────────────────────────────────────
	options := []smoothie.SmoothieBuilderOption{
		smoothie.WithLogger(logger),
		smoothie.WithTitle(cfg.Window.Title),
		smoothie.WithTickRate(cfg.TickRate),
		smoothie.WithRenderFrameLimit(cfg.RenderFrameLimit),
		smoothie.WithPrimitiveCapacity(cfg.PrimitiveCapacity),
		smoothie.WithPresentMode(renderer.ParsePresentMode(cfg.PresentMode)),
		smoothie.WithMSAA(renderer.ParseMSAA(cfg.MSAA)),
		smoothie.WithProfiling(cfg.Profiling),
		smoothie.WithWorkers(cfg.Workers),
	}
	if cfg.Headless.Enabled {
		// One scene tick per output frame.
		options = append(options,
			smoothie.WithHeadless(cfg.Headless.OutputDir),
			smoothie.WithWindowSize(cfg.Headless.Width, cfg.Headless.Height),
			smoothie.WithTickRate(float64(cfg.Headless.FPS)),
		)
	} else {
		options = append(options, smoothie.WithWindowSize(cfg.Window.Width, cfg.Window.Height))
	}

	if cfg.MQTT.Enabled {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		sink, err := stream.DialMQTT(dialCtx, cfg.MQTT.URL, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password,
			stream.WithTopic(cfg.MQTT.Topic),
			stream.WithQoS(byte(cfg.MQTT.QoS)),
			stream.WithLogger(logger),
		)
		cancel()
		if err != nil {
			return err
		}
		defer sink.Close()
		options = append(options, smoothie.WithFrameSink(sink))
	}

	s := smoothie.New(options...)
	if err := buildDemo(s, kind); err != nil {
		return err
	}

	logger.Info().
		Bool("headless", cfg.Headless.Enabled).
		Bool("mqtt", cfg.MQTT.Enabled).
		Stringer("easing", kind).
		Dur("timeline", s.Cursor()).
		Msg("serving demo")
	return s.Serve(ctx)
}

// setupLogging builds a console logger at the configured level.
func setupLogging(level string) zerolog.Logger {
	var logLevelActual zerolog.Level
	switch strings.ToUpper(level) {
	case "TRACE":
		logLevelActual = zerolog.TraceLevel
	case "DEBUG":
		logLevelActual = zerolog.DebugLevel
	case "WARN":
		logLevelActual = zerolog.WarnLevel
	case "ERROR":
		logLevelActual = zerolog.ErrorLevel
	default:
		logLevelActual = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevelActual)
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
	logger.Info().Str("loglevel", logLevelActual.String()).Msg("Logging set up")
	return logger
}
