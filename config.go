package llmpress

// Config bounds a single compress/decompress run. It is built and loaded by
// the CLI glue (cmd/llmpress); the core library never reads a path, only a
// Config value.
type Config struct {
	// Window is W: the context length cap and the k passed to TopK.
	Window int `yaml:"window"`
	// MinChunk and MaxChunk bound chunk size in bytes (§3, §4.1).
	MinChunk int `yaml:"min_chunk"`
	MaxChunk int `yaml:"max_chunk"`
	// Concurrency bounds how many chunks are tokenized/rank-encoded in
	// parallel during compression (§5).
	Concurrency int `yaml:"concurrency"`
}

const (
	DefaultWindow      = 64
	DefaultMinChunk    = 100
	DefaultMaxChunk    = 500
	DefaultConcurrency = 4
)

// WithDefaults returns a copy of c with zero-valued fields replaced by the
// package defaults, mirroring the zero-means-default convention
// predictor.NewQueue applies to its timeout.
func (c Config) WithDefaults() Config {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.MinChunk == 0 {
		c.MinChunk = DefaultMinChunk
	}
	if c.MaxChunk == 0 {
		c.MaxChunk = DefaultMaxChunk
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}
