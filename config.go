package lasagna

import (
	"fmt"

	"github.com/gcomneno/lasagna-v2/classify"
	"github.com/gcomneno/lasagna-v2/container"
	"github.com/gcomneno/lasagna-v2/errs"
	"github.com/gcomneno/lasagna-v2/internal/options"
	"github.com/gcomneno/lasagna-v2/segmenter"
)

// Config parameterizes a single Encode call. It is immutable once built: the same
// Config applied to the same TimeSeries always produces byte-identical output.
type Config struct {
	segmentMode   segmenter.Mode
	minLen        uint32
	maxLen        uint32
	mseThreshold  float64
	predictorMode segmenter.PredictorMode
	coding        container.ResidualCoding
	qMin          float64
	cQ            float64
	thresholds    classify.Thresholds
}

// Option configures a Config under construction.
type Option = options.Option[*Config]

// DefaultConfig returns the configuration Encode uses when no options are given: fixed
// segmentation at length 256, automatic predictor selection, varint residual coding.
func DefaultConfig() Config {
	return Config{
		segmentMode:   segmenter.Fixed,
		minLen:        16,
		maxLen:        256,
		mseThreshold:  0.01,
		predictorMode: segmenter.PredictorAuto,
		coding:        container.CodingVarint,
		qMin:          1e-6,
		cQ:            0.25,
		thresholds:    classify.DefaultThresholds(),
	}
}

// NewConfig builds a Config from DefaultConfig plus the given options, validating the
// result. Validation happens once, here, not on every Encode call.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()

	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.minLen == 0 {
		return fmt.Errorf("lasagna: %w: min segment length must be positive", errs.ErrInvalidConfig)
	}

	if c.maxLen < c.minLen {
		return fmt.Errorf("lasagna: %w: max segment length %d is below min %d", errs.ErrInvalidConfig, c.maxLen, c.minLen)
	}

	if c.mseThreshold <= 0 {
		return fmt.Errorf("lasagna: %w: mse threshold must be positive", errs.ErrInvalidConfig)
	}

	if c.qMin <= 0 {
		return fmt.Errorf("lasagna: %w: q_min must be positive", errs.ErrInvalidConfig)
	}

	if c.cQ <= 0 {
		return fmt.Errorf("lasagna: %w: c_q must be positive", errs.ErrInvalidConfig)
	}

	return nil
}

// WithSegmentMode selects fixed-length or adaptive segmentation.
func WithSegmentMode(mode segmenter.Mode) Option {
	return options.NoError(func(c *Config) { c.segmentMode = mode })
}

// WithMinSegmentLength sets the minimum segment length for both segmentation modes.
func WithMinSegmentLength(n uint32) Option {
	return options.NoError(func(c *Config) { c.minLen = n })
}

// WithMaxSegmentLength sets the maximum segment length for both segmentation modes.
func WithMaxSegmentLength(n uint32) Option {
	return options.NoError(func(c *Config) { c.maxLen = n })
}

// WithMSEThreshold sets the post-decode MSE ceiling adaptive segmentation grows against.
// It has no effect in fixed segmentation mode.
func WithMSEThreshold(threshold float64) Option {
	return options.NoError(func(c *Config) { c.mseThreshold = threshold })
}

// WithPredictor forces every segment to use the given predictor, or selects automatic
// per-segment predictor selection.
func WithPredictor(mode segmenter.PredictorMode) Option {
	return options.NoError(func(c *Config) { c.predictorMode = mode })
}

// WithResidualCoding selects how quantized residuals are entropy-coded.
func WithResidualCoding(coding container.ResidualCoding) Option {
	return options.NoError(func(c *Config) { c.coding = coding })
}

// WithQMin sets the quantization step floor, guaranteeing Q never collapses to zero on
// a constant or near-constant segment.
func WithQMin(qMin float64) Option {
	return options.NoError(func(c *Config) { c.qMin = qMin })
}

// WithCQ sets the quantization step multiplier applied to each segment's residual
// standard deviation.
func WithCQ(cQ float64) Option {
	return options.NoError(func(c *Config) { c.cQ = cQ })
}

// WithClassifierThresholds overrides the default pattern and salience thresholds.
func WithClassifierThresholds(t classify.Thresholds) Option {
	return options.NoError(func(c *Config) { c.thresholds = t })
}
