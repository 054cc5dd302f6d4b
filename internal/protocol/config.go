package protocol

type Config struct {
	// The maximum number of measurements accepted in a single batch.
	MaxBatchSize int
}

// DefaultConfig specifies the default config values for the protocol decoder.
var DefaultConfig = Config{
	MaxBatchSize: 10_000,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = other.MaxBatchSize
	}
	return cfg
}
