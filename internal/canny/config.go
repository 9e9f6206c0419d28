package canny

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrInvalidSigma = errors.New("sigma must be positive")

const (
	DefaultSigma         = 1.4
	DefaultLowThreshold  = 10.0
	DefaultHighThreshold = 50.0
)

// Config holds the parameters of one detection run.
//
// LowThreshold is compared against the floating-point gradient
// magnitude; a magnitude equal to it is rejected. HighThreshold is
// compared against the saturated 8-bit strength; a strength equal to it
// is accepted. HighThreshold > LowThreshold is expected but not
// enforced: inverted or negative thresholds give degenerate, still
// deterministic masks.
type Config struct {
	Sigma         float64
	LowThreshold  float64
	HighThreshold float64
	Connectivity  Connectivity
	Workers       int
}

func DefaultConfig() Config {
	return Config{
		Sigma:         DefaultSigma,
		LowThreshold:  DefaultLowThreshold,
		HighThreshold: DefaultHighThreshold,
		Connectivity:  ConnectivityRaster,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Sigma) || c.Sigma <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidSigma, c.Sigma)
	}
	switch c.Connectivity {
	case ConnectivityRaster, ConnectivityFull:
	default:
		return fmt.Errorf("unsupported connectivity: %v", c.Connectivity)
	}
	return nil
}

// Detect runs suppression and hysteresis over field. Sigma is not used
// here; it belongs to the preprocessing that built the field.
func Detect(ctx context.Context, field *GradientField, cfg Config) (*EdgeMask, error) {
	nms := NonMaxSuppressor{
		LowThreshold: cfg.LowThreshold,
		StepSize:     DefaultStepSize,
		Workers:      cfg.Workers,
	}
	strength, err := nms.Suppress(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("non-maximum suppression failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hyst := HysteresisThresholder{
		HighThreshold: cfg.HighThreshold,
		Connectivity:  cfg.Connectivity,
	}
	return hyst.Threshold(strength), nil
}
