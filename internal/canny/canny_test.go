package canny

import (
	"testing"
)

// sobelField correlates img with the Sobel kernels, replicating border
// pixels, the same way the OpenCV preprocessing does.
func sobelField(t *testing.T, img []float64, width, height int) *GradientField {
	t.Helper()

	at := func(x, y int) float64 {
		x = min(max(x, 0), width-1)
		y = min(max(y, 0), height-1)
		return img[y*width+x]
	}

	gx := NewScalarBuffer(width, height)
	gy := NewScalarBuffer(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx.Set(x, y,
				-at(x-1, y-1)+at(x+1, y-1)-
					2*at(x-1, y)+2*at(x+1, y)-
					at(x-1, y+1)+at(x+1, y+1))
			gy.Set(x, y,
				-at(x-1, y-1)-2*at(x, y-1)-at(x+1, y-1)+
					at(x-1, y+1)+2*at(x, y+1)+at(x+1, y+1))
		}
	}

	field, err := NewGradientField(gx, gy)
	if err != nil {
		t.Fatalf("NewGradientField() error = %v", err)
	}
	return field
}

func verticalStep(width, height int) []float64 {
	img := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img[y*width+x] = 255
		}
	}
	return img
}

// fieldFromGx builds a field whose gradients all point along +x or -x.
func fieldFromGx(t *testing.T, width, height int, gx map[[2]int]float64) *GradientField {
	t.Helper()
	bx := NewScalarBuffer(width, height)
	for p, v := range gx {
		bx.Set(p[0], p[1], v)
	}
	field, err := NewGradientField(bx, NewScalarBuffer(width, height))
	if err != nil {
		t.Fatalf("NewGradientField() error = %v", err)
	}
	return field
}

func strengthRow(values ...uint8) *EdgeStrengthBuffer {
	b := NewEdgeStrengthBuffer(len(values), 1)
	copy(b.Pix, values)
	return b
}
