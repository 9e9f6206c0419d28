package canny

import (
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("gradient components differ in size")

// GradientField pairs the horizontal and vertical directional responses
// of one image. It is read-only once built.
type GradientField struct {
	Gx *ScalarBuffer
	Gy *ScalarBuffer
}

func NewGradientField(gx, gy *ScalarBuffer) (*GradientField, error) {
	if gx == nil || gy == nil {
		return nil, fmt.Errorf("gradient component is nil")
	}
	if gx.Width != gy.Width || gx.Height != gy.Height {
		return nil, fmt.Errorf("%w: gx %dx%d, gy %dx%d", ErrDimensionMismatch,
			gx.Width, gx.Height, gy.Width, gy.Height)
	}
	return &GradientField{Gx: gx, Gy: gy}, nil
}

func (f *GradientField) Width() int  { return f.Gx.Width }
func (f *GradientField) Height() int { return f.Gx.Height }

// Sample returns the gradient magnitude and its direction in radians,
// in (-π, π]. Coordinates are not bounds-checked.
func (f *GradientField) Sample(x, y int) (magnitude, angle float64) {
	i := y*f.Gx.Width + x
	gx := f.Gx.Pix[i]
	gy := f.Gy.Pix[i]
	return math.Sqrt(gx*gx + gy*gy), math.Atan2(gy, gx)
}

// Magnitude is Sample without the angle.
func (f *GradientField) Magnitude(x, y int) float64 {
	i := y*f.Gx.Width + x
	gx := f.Gx.Pix[i]
	gy := f.Gy.Pix[i]
	return math.Sqrt(gx*gx + gy*gy)
}
