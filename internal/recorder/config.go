package recorder

// DefaultPath is the log file used when none is configured.
const DefaultPath = "data.csv"

type Config struct {
	// Recorder params
	// Path of the log file. Created on the first append if it does not exist.
	Path string

	// Config values
	// The function used to open the log for appending. It defaults to OpenAppend.
	OpenFile OpenFunc
}

// DefaultConfig specifies the default config values for a Recorder.
var DefaultConfig = Config{
	Path:     DefaultPath,
	OpenFile: OpenAppend,
}

// CombineWith takes the values from the other config and combines them with the values from the current config.
// Specifically, it fills the gaps on the current config (unset values) with the corresponding values from the other config (if it has them).
func (cfg Config) CombineWith(other Config) Config {
	if cfg.Path == "" {
		cfg.Path = other.Path
	}
	if cfg.OpenFile == nil {
		cfg.OpenFile = other.OpenFile
	}
	return cfg
}
