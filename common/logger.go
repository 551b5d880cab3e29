package common

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerPtr stores the active logger. Accessed atomically so that SetLogger can be
// called while the animation and render goroutines are logging.
var loggerPtr atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.Nop()
	loggerPtr.Store(&l)
}

// SetLogger configures the logger shared by every engine package.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *zerolog.Logger) {
	if l == nil {
		nop := zerolog.Nop()
		l = &nop
	}
	loggerPtr.Store(l)
}

// Logger returns the currently installed logger.
//
// Returns:
//   - *zerolog.Logger: the active logger (never nil)
func Logger() *zerolog.Logger {
	return loggerPtr.Load()
}
