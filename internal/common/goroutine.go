// -----------------------------------------------------------------------
// Safe Goroutine - Panic-protected goroutine wrapper
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// goroutineCounter tracks spawned goroutines for diagnostics
var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs fn in a goroutine with panic recovery.
// The returned channel receives exactly one value: fn's error, or an error
// describing the panic. A panic is logged and a crash report is written, but
// the process keeps running.
//
// Example:
//
//	done := common.SafeGo(logger, "chromedp.run", func() error {
//	    return chromedp.Run(tabCtx, actions...)
//	})
//	err := <-done
func SafeGo(logger arbor.ILogger, name string, fn func() error) <-chan error {
	atomic.AddInt64(&goroutineCounter, 1)
	done := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				stackTrace := string(buf[:n])

				if logger != nil {
					logger.Error().
						Str("goroutine", name).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", stackTrace).
						Msg("Recovered from panic in goroutine")
				}
				WriteCrashFile(r, stackTrace)

				done <- fmt.Errorf("goroutine %s panicked: %v", name, r)
			}
		}()

		done <- fn()
	}()

	return done
}
