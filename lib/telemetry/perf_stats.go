package telemetry

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.opentelemetry.io/otel"
)

var meter = otel.Meter("quizlet-importer/perf_stats")
var cpuGauge, _ = meter.Float64Gauge("process_cpu_percent")
var rssGauge, _ = meter.Int64Gauge("process_rss_mb")
var allocGauge, _ = meter.Int64Gauge("allocated_mb")
var goroutineGauge, _ = meter.Int64Gauge("goroutine_count")

// InstrumentPerfStats records resource usage of this process every interval
// until ctx is done. Long folder imports are the case worth watching.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		slog.Warn("perf stats disabled", "err", err)
		return
	}

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				cpu, err := proc.PercentWithContext(ctx, 0)
				if err == nil {
					cpuGauge.Record(ctx, cpu)
				}
				mem, err := proc.MemoryInfoWithContext(ctx)
				if err == nil {
					rssGauge.Record(ctx, int64(mem.RSS/1_000_000))
				}

				allocGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
			case <-ctx.Done():
				return
			}
		}
	}()
}
