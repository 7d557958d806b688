package config

// Config holds batch execution parameters for schedule generation.
type Config struct {
	// Parallelism caps the number of goroutines used for one batch.
	// Zero means runtime.GOMAXPROCS(0).
	Parallelism int

	// MinChunk is the smallest number of batch elements handed to one
	// goroutine. Batches smaller than this run on the calling goroutine.
	MinChunk int

	// MaxPeriods bounds the number of dates generated for a single batch
	// element. Zero means unlimited.
	MaxPeriods int
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Parallelism: 0,
	MinChunk:    256,
	MaxPeriods:  0,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration. Call it during start-up,
// before schedules are generated.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}
