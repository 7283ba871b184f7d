package calculation

import "time"

// Logger is a minimal logging interface for the calculation engine.
// Implementations should be fast; the default is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger implements Logger with no output.
type NopLogger struct{}

func (NopLogger) Debugf(format string, args ...any) {}
func (NopLogger) Infof(format string, args ...any)  {}
func (NopLogger) Warnf(format string, args ...any)  {}
func (NopLogger) Errorf(format string, args ...any) {}

// Observer receives counts of the work the engine performs. Searches call it from
// worker goroutines, so implementations must be safe for concurrent use.
type Observer interface {
	// ObserveEvaluation is called once per orchestrator run made on behalf of op
	ObserveEvaluation(op string)
	// ObserveSearch is called when a search finishes
	ObserveSearch(op string, elapsed time.Duration, evaluations int)
}

// NopObserver implements Observer with no effect.
type NopObserver struct{}

func (NopObserver) ObserveEvaluation(op string)                                     {}
func (NopObserver) ObserveSearch(op string, elapsed time.Duration, evaluations int) {}

// Operation names reported to observers
const (
	OpScenario   = "scenario"
	OpRateHike   = "rate_hike"
	OpClaiming   = "claiming"
	OpMonteCarlo = "monte_carlo"
)
