package timing

import (
	"context"
	"sync"
	"time"
)

type contextKey struct{}

type Logger interface {
	Debug(component string, message string, fields map[string]interface{})
}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Tracker accumulates per-operation durations. A nil *Tracker is usable and records nothing.
type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	logger  Logger
}

func NewTracker(logger Logger) *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		logger:  logger,
	}
}

// StartTimingWith derives the timing context from parent so cancellation still flows
func (tt *Tracker) StartTimingWith(parent context.Context, operation string) context.Context {
	if tt == nil {
		return parent
	}

	return context.WithValue(parent, contextKey{}, TimingInfo{
		Operation: operation,
		StartTime: time.Now(),
	})
}

func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	if tt == nil {
		return 0
	}

	timingInfo, ok := ctx.Value(contextKey{}).(TimingInfo)
	if !ok {
		return 0
	}

	duration := time.Since(timingInfo.StartTime)

	tt.mu.Lock()
	tt.timings[timingInfo.Operation] = append(tt.timings[timingInfo.Operation], duration)
	tt.mu.Unlock()

	if tt.logger != nil {
		tt.logger.Debug("timing", "operation completed", map[string]interface{}{
			"operation":   timingInfo.Operation,
			"duration_ms": float64(duration.Microseconds()) / 1000,
		})
	}

	return duration
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	if tt == nil {
		return nil
	}

	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}
