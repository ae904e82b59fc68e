// Package debug provides conditional debug logging for spdash.
//
// Debug logging is enabled by setting the SPDASH_DEBUG environment variable:
//
//	SPDASH_DEBUG=1 spdash --export ./out
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops.
package debug

import (
	"fmt"
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("SPDASH_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[SPDASH_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[SPDASH_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf(format, args...))
}

// LogTiming logs the elapsed time of a named operation.
func LogTiming(name string, elapsed time.Duration) {
	if !enabled {
		return
	}
	logger.Output(2, fmt.Sprintf("%s took %s", name, elapsed))
}
