package config

// GateConfig configures the Middle-Manager Gate's bounded retry loop,
// mirrored directly into gate.Config by cmd/scout's setup path.
type GateConfig struct {
	MaxAttempts         int     `yaml:"max_attempts"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// DefaultGateConfig returns gate.DefaultMaxAttempts /
// gate.DefaultConfidenceThreshold's values, duplicated here (rather than
// imported) so config has no dependency on scoutcore internals.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxAttempts:         2,
		ConfidenceThreshold: 0.75,
	}
}
