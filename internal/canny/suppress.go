package canny

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const DefaultStepSize = 2.0

// NonMaxSuppressor thins a gradient field to ridge pixels. A pixel
// survives only when both probes, StepSize pixels forward and backward
// along its gradient direction, are out of bounds or strictly weaker.
// Survivors at or below LowThreshold are dropped too.
type NonMaxSuppressor struct {
	LowThreshold float64
	StepSize     float64
	Workers      int
}

func (s *NonMaxSuppressor) Suppress(ctx context.Context, field *GradientField) (*EdgeStrengthBuffer, error) {
	width, height := field.Width(), field.Height()
	out := NewEdgeStrengthBuffer(width, height)
	if width == 0 || height == 0 {
		return out, nil
	}

	step := s.StepSize
	if step == 0 {
		step = DefaultStepSize
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, height)
	chunk := (height + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < height; start += chunk {
		end := min(start+chunk, height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := start; y < end; y++ {
				row := out.Pix[y*width : (y+1)*width]
				for x := range row {
					row[x] = s.strengthAt(field, x, y, step)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NonMaxSuppressor) strengthAt(field *GradientField, x, y int, step float64) uint8 {
	magnitude, angle := field.Sample(x, y)
	dx := step * math.Cos(angle)
	dy := step * math.Sin(angle)

	fx, fy := float64(x), float64(y)
	if dominates(field, fx+dx, fy+dy, magnitude) || dominates(field, fx-dx, fy-dy, magnitude) {
		return 0
	}
	if magnitude <= s.LowThreshold {
		return 0
	}
	return saturate(magnitude)
}

// dominates reports whether the probe at (px, py) is in bounds and at
// least as strong as magnitude. Bounds are checked before truncation so
// negative probes never wrap onto the first row or column.
func dominates(field *GradientField, px, py, magnitude float64) bool {
	if px < 0 || py < 0 || px >= float64(field.Width()) || py >= float64(field.Height()) {
		return false
	}
	return field.Magnitude(int(px), int(py)) >= magnitude
}

func saturate(v float64) uint8 {
	if v >= math.MaxUint8 {
		return math.MaxUint8
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
