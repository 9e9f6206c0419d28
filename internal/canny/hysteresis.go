package canny

import (
	"fmt"
	"strings"
)

type Connectivity int

const (
	// ConnectivityRaster expands accepted pixels during a single
	// row-major pass. Neighbours accepted after their position has been
	// scanned are not expanded, so weak chains that run against the scan
	// order can be cut short.
	ConnectivityRaster Connectivity = iota
	// ConnectivityFull walks every 8-connected component of non-zero
	// strength that touches a strong pixel.
	ConnectivityFull
)

func (c Connectivity) String() string {
	switch c {
	case ConnectivityRaster:
		return "raster"
	case ConnectivityFull:
		return "full"
	default:
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
}

func ParseConnectivity(s string) (Connectivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raster":
		return ConnectivityRaster, nil
	case "full", "flood":
		return ConnectivityFull, nil
	default:
		return 0, fmt.Errorf("unknown connectivity %q (want raster or full)", s)
	}
}

var neighbourOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// HysteresisThresholder keeps pixels whose strength reaches
// HighThreshold and grows them through non-zero 8-neighbours.
type HysteresisThresholder struct {
	HighThreshold float64
	Connectivity  Connectivity
}

func (h *HysteresisThresholder) Threshold(strength *EdgeStrengthBuffer) *EdgeMask {
	var sure []bool
	switch h.Connectivity {
	case ConnectivityFull:
		sure = h.flood(strength)
	default:
		sure = h.raster(strength)
	}

	mask := NewEdgeMask(strength.Width, strength.Height)
	for i, ok := range sure {
		if ok {
			mask.Pix[i] = EdgeValue
		}
	}
	return mask
}

func (h *HysteresisThresholder) strong(v uint8) bool {
	return float64(v) >= h.HighThreshold
}

func (h *HysteresisThresholder) raster(strength *EdgeStrengthBuffer) []bool {
	width, height := strength.Width, strength.Height
	sure := make([]bool, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !sure[i] && !h.strong(strength.Pix[i]) {
				continue
			}
			sure[i] = true

			for _, off := range neighbourOffsets {
				nx, ny := x+off[0], y+off[1]
				if !strength.In(nx, ny) {
					continue
				}
				if j := ny*width + nx; strength.Pix[j] > 0 {
					sure[j] = true
				}
			}
		}
	}
	return sure
}

func (h *HysteresisThresholder) flood(strength *EdgeStrengthBuffer) []bool {
	width := strength.Width
	sure := make([]bool, len(strength.Pix))
	queue := make([]int, 0, 64)

	for i, v := range strength.Pix {
		if h.strong(v) {
			sure[i] = true
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%width, i/width

		for _, off := range neighbourOffsets {
			nx, ny := x+off[0], y+off[1]
			if !strength.In(nx, ny) {
				continue
			}
			j := ny*width + nx
			if sure[j] || strength.Pix[j] == 0 {
				continue
			}
			sure[j] = true
			queue = append(queue, j)
		}
	}
	return sure
}
