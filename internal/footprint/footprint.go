package footprint

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bool64/ctxd"
)

const reportInterval = 100 * time.Millisecond

// Probe returns key-value pairs to log along with the memory usage.
type Probe func() []any

// Track writes the resources usage to the log at a regular interval, until the context is done.
func Track(ctx context.Context, log ctxd.Logger, probes ...Probe) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			// See: https://golang.org/pkg/runtime/#MemStats
			var m runtime.MemStats

			runtime.ReadMemStats(&m)

			keysAndValues := []any{
				"alloc_mb", formatB(m.Alloc),
				"total_alloc_mb", formatB(m.TotalAlloc),
				"sys_mb", formatB(m.Sys),
				"num_gc", m.NumGC,
				"num_goroutine", runtime.NumGoroutine(),
			}

			for _, p := range probes {
				keysAndValues = append(keysAndValues, p()...)
			}

			log.Debug(ctx, "resources usage", keysAndValues...)
		}
	}
}

func formatB(b uint64) string {
	return fmt.Sprintf("%dMiB", b/1024/1024) // nolint: gomnd // bytes conversion.
}
