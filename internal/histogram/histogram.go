// Package histogram counts 8-bit intensities and renders them as a small
// line-marker chart.
package histogram

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

const (
	Bins        = 256
	ChartWidth  = Bins
	ChartHeight = 200
)

var (
	Black = color.RGBA{A: 255}
	Red   = color.RGBA{R: 255, A: 255}
	Green = color.RGBA{G: 255, A: 255}
	Blue  = color.RGBA{B: 255, A: 255}
)

// Counts holds the number of occurrences of each intensity.
type Counts [Bins]uint64

func (c *Counts) Max() uint64 {
	var m uint64
	for _, v := range c {
		m = max(m, v)
	}
	return m
}

func (c *Counts) Total() uint64 {
	var t uint64
	for _, v := range c {
		t += v
	}
	return t
}

func CountGray(pix []uint8) Counts {
	var c Counts
	for _, v := range pix {
		c[v]++
	}
	return c
}

// CountChannels counts interleaved samples with the given channel count
// and returns one Counts per channel, in storage order.
func CountChannels(data []uint8, channels int) ([]Counts, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	if len(data)%channels != 0 {
		return nil, fmt.Errorf("data length %d is not a multiple of %d channels", len(data), channels)
	}

	counts := make([]Counts, channels)
	for i, v := range data {
		counts[i%channels][v]++
	}
	return counts, nil
}

type Series struct {
	Counts Counts
	Color  color.Color
}

// Render draws every series onto a white ChartWidth×ChartHeight canvas.
// Each bin becomes one marker whose height is scaled against the
// series' own maximum.
func Render(series ...Series) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ChartWidth, ChartHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for _, s := range series {
		peak := s.Counts.Max()
		if peak == 0 {
			continue
		}
		for bin, count := range s.Counts {
			img.Set(bin, MarkerRow(count, peak), s.Color)
		}
	}
	return img
}

// MarkerRow returns the chart row for count. Heights are capped at 255
// and rows at the top edge.
func MarkerRow(count, peak uint64) int {
	if peak == 0 {
		return ChartHeight - 1
	}
	height := min(int(float64(count)/float64(peak)*ChartHeight), 255)
	return max(ChartHeight-1-height, 0)
}
