package cloudsim

// EngineConfig groups the tunables accepted by NewEngine, following the
// small-config-struct convention used throughout this module (see
// cmd.ScenarioConfig): callers fill in only the fields that matter and
// rely on defaults for the rest via NewEngine.
type EngineConfig struct {
	// StartTime is the simulated instant the clock begins at. Defaults to 0.
	StartTime float64
	// MinTimeBetweenEvents is the minimum time between events. NewEngine
	// replaces a non-positive value with the default and stores it; the
	// engine does not read it afterwards, so closely spaced events are
	// neither rejected nor logged (the dispatcher's only hard rule is
	// delay >= 0). Defaults to 0.1.
	MinTimeBetweenEvents float64
}

// DefaultEngineConfig returns the zero-value-safe defaults applied by
// NewEngine when a field is left at its Go zero value.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		StartTime:            0,
		MinTimeBetweenEvents: 0.1,
	}
}
