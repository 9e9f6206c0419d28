// Package canny implements the numeric core of Canny edge detection:
// gradient sampling, non-maximum suppression and hysteresis thresholding
// over dense row-major buffers. Producing the gradient components
// (grayscale, blur, Sobel correlation) is left to the caller.
package canny

import (
	"fmt"
	"image"
)

const (
	EdgeValue       uint8 = 255
	BackgroundValue uint8 = 0
)

// ScalarBuffer is a width×height row-major grid of samples.
type ScalarBuffer struct {
	Width  int
	Height int
	Pix    []float64
}

func NewScalarBuffer(width, height int) *ScalarBuffer {
	return &ScalarBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// NewScalarBufferFrom wraps pix without copying.
func NewScalarBufferFrom(width, height int, pix []float64) (*ScalarBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer dimensions: %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("buffer holds %d samples, want %d for %dx%d", len(pix), width*height, width, height)
	}
	return &ScalarBuffer{Width: width, Height: height, Pix: pix}, nil
}

func (b *ScalarBuffer) At(x, y int) float64 {
	return b.Pix[y*b.Width+x]
}

func (b *ScalarBuffer) Set(x, y int, v float64) {
	b.Pix[y*b.Width+x] = v
}

func (b *ScalarBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// EdgeStrengthBuffer holds post-suppression magnitudes saturated to 8 bits.
// Zero marks a pixel that is not an edge candidate.
type EdgeStrengthBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewEdgeStrengthBuffer(width, height int) *EdgeStrengthBuffer {
	return &EdgeStrengthBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (b *EdgeStrengthBuffer) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

func (b *EdgeStrengthBuffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Max returns the largest stored strength.
func (b *EdgeStrengthBuffer) Max() uint8 {
	var m uint8
	for _, v := range b.Pix {
		if v > m {
			m = v
		}
	}
	return m
}

// EdgeMask is the final binary output: EdgeValue for edges, BackgroundValue otherwise.
type EdgeMask struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewEdgeMask(width, height int) *EdgeMask {
	return &EdgeMask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (m *EdgeMask) IsEdge(x, y int) bool {
	return m.Pix[y*m.Width+x] == EdgeValue
}

// Count returns the number of edge pixels.
func (m *EdgeMask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v == EdgeValue {
			n++
		}
	}
	return n
}

// Image returns a grayscale view sharing the mask's pixels.
func (m *EdgeMask) Image() *image.Gray {
	return &image.Gray{
		Pix:    m.Pix,
		Stride: m.Width,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}
