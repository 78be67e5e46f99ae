// FILE: logscribe/src/cmd/logscribe/status.go
package main

import (
	"context"
	"time"

	"logscribe/src/internal/service"
)

// statusReporter periodically logs service status
func statusReporter(ctx context.Context, svc *service.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("msg", "Panic in status reporter",
							"component", "status_reporter",
							"panic", r)
					}
				}()
				logStatus(svc.GetGlobalStats())
			}()
		}
	}
}

// logStatus flattens the headline counters into one log line
func logStatus(stats map[string]any) {
	statusFields := []any{
		"msg", "Status report",
		"component", "status_reporter",
	}

	for _, key := range []string{"total_processed", "total_filtered", "total_buffered", "total_unencoded", "total_overflow"} {
		if v, ok := stats[key].(uint64); ok {
			statusFields = append(statusFields, key, v)
		}
	}

	if buf, ok := stats["buffer"].(map[string]any); ok {
		statusFields = append(statusFields,
			"chunks_flushed", buf["chunks_flushed"],
			"chunks_dropped", buf["chunks_dropped"],
			"queue_length", buf["queue_length"])
	}

	if out, ok := stats["output"].(map[string]any); ok {
		statusFields = append(statusFields,
			"entries_shipped", out["entries_shipped"],
			"entries_skipped", out["entries_skipped"])
	}

	logger.Info(statusFields...)
}
