package astm

// StandardFrameSize is the maximum frame content length recommended by ASTM E1381.
const StandardFrameSize = 240

// EncodeConfig controls how frames and messages are rendered.
//
// The zero value excludes STX from the checksum, omits frame numbers and disables
// splitting. Use DefaultEncodeConfig or NewEncodeConfig for the usual defaults.
type EncodeConfig struct {
	// IncludeLeadInChecksum includes the leading STX in the checksum when true.
	IncludeLeadInChecksum bool
	// IncludeSequenceNumbers writes the frame number right after STX when true.
	IncludeSequenceNumbers bool
	// MaxFrameSize is the maximum number of content bytes per frame.
	// Zero or negative values disable splitting: every line becomes its own final frame.
	MaxFrameSize int
}

// DefaultEncodeConfig returns the configuration most receivers accept:
// STX counted in the checksum, frame numbers on, no splitting.
func DefaultEncodeConfig() EncodeConfig {
	return EncodeConfig{
		IncludeLeadInChecksum:  true,
		IncludeSequenceNumbers: true,
		MaxFrameSize:           0,
	}
}

// NewEncodeConfig returns DefaultEncodeConfig with opts applied in order.
func NewEncodeConfig(opts ...EncodeOption) EncodeConfig {
	cfg := DefaultEncodeConfig()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	return cfg
}

// Splitting reports whether lines are joined and cut into size-bounded frames.
func (cfg EncodeConfig) Splitting() bool {
	return cfg.MaxFrameSize > 0
}

// --- EncodeOption ---

// EncodeOption is a functional option for NewEncodeConfig.
type EncodeOption interface {
	apply(*EncodeConfig)
}

type encodeOptFunc func(*EncodeConfig)

func (f encodeOptFunc) apply(cfg *EncodeConfig) { f(cfg) }

// WithLeadInChecksum sets whether STX is included in the checksum.
func WithLeadInChecksum(enabled bool) EncodeOption {
	return encodeOptFunc(func(cfg *EncodeConfig) {
		cfg.IncludeLeadInChecksum = enabled
	})
}

// WithSequenceNumbers sets whether frame numbers are written.
func WithSequenceNumbers(enabled bool) EncodeOption {
	return encodeOptFunc(func(cfg *EncodeConfig) {
		cfg.IncludeSequenceNumbers = enabled
	})
}

// WithMaxFrameSize sets the maximum frame content size.
// Values <= 0 disable splitting, they are not an error.
func WithMaxFrameSize(size int) EncodeOption {
	return encodeOptFunc(func(cfg *EncodeConfig) {
		if size < 0 {
			size = 0
		}
		cfg.MaxFrameSize = size
	})
}
