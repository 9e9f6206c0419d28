// Package filter wraps the single-call OpenCV operations the CLI exposes.
// Every function leaves src untouched and returns a new Mat owned by the
// caller.
package filter

import (
	"fmt"
	"image"
	"math"

	"ipcli/internal/opencv/conversion"
	"ipcli/internal/opencv/safe"

	"github.com/samber/lo"
	"gocv.io/x/gocv"
)

var (
	SobelX = [9]float32{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	SobelY = [9]float32{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// GaussianKernelSize returns the odd kernel width used for sigma.
func GaussianKernelSize(sigma float64) int {
	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}
	return kernelSize
}

func GaussianBlur(src *safe.Mat, sigma float64) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "GaussianBlur"); err != nil {
		return nil, err
	}
	if math.IsNaN(sigma) || sigma <= 0 {
		return nil, fmt.Errorf("blur sigma must be positive, got %v", sigma)
	}

	k := GaussianKernelSize(sigma)
	dst := gocv.NewMat()
	gocv.GaussianBlur(src.GetMat(), &dst, image.Point{X: k, Y: k}, sigma, sigma, gocv.BorderDefault)
	return adopt(dst, "gaussian_blur")
}

// Correlate3x3 slides kernel (row-major, not flipped) over src and
// writes signed CV_32F responses. Border pixels are replicated.
func Correlate3x3(src *safe.Mat, kernel [9]float32) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Correlate3x3"); err != nil {
		return nil, err
	}

	k := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32FC1)
	defer k.Close()
	for i, v := range kernel {
		k.SetFloatAt(i/3, i%3, v)
	}

	dst := gocv.NewMat()
	gocv.Filter2D(src.GetMat(), &dst, gocv.MatTypeCV32F, k, image.Point{X: -1, Y: -1}, 0, gocv.BorderReplicate)
	return adopt(dst, "correlate3x3")
}

// Sobel returns the horizontal and vertical Sobel responses of a
// single-channel image.
func Sobel(src *safe.Mat) (gx, gy *safe.Mat, err error) {
	if src.Channels() != 1 {
		return nil, nil, fmt.Errorf("Sobel requires a single-channel Mat, got %d channels", src.Channels())
	}

	gx, err = Correlate3x3(src, SobelX)
	if err != nil {
		return nil, nil, fmt.Errorf("horizontal gradient failed: %w", err)
	}

	gy, err = Correlate3x3(src, SobelY)
	if err != nil {
		gx.Close()
		return nil, nil, fmt.Errorf("vertical gradient failed: %w", err)
	}

	return gx, gy, nil
}

// FitWithin scales (width, height) to fit a size×size box, keeping the
// aspect ratio. Neither side drops below one pixel.
func FitWithin(width, height, size int) (int, int) {
	if width <= 0 || height <= 0 || size <= 0 {
		return 0, 0
	}
	scale := math.Min(float64(size)/float64(width), float64(size)/float64(height))
	w := max(int(math.Round(float64(width)*scale)), 1)
	h := max(int(math.Round(float64(height)*scale)), 1)
	return w, h
}

func Thumbnail(src *safe.Mat, size int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Thumbnail"); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("thumbnail size must be positive, got %d", size)
	}

	w, h := FitWithin(src.Cols(), src.Rows(), size)
	dst := gocv.NewMat()
	gocv.Resize(src.GetMat(), &dst, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLanczos4)
	return adopt(dst, "thumbnail")
}

// Brighten adds delta to every channel, saturating at 0 and 255.
func Brighten(src *safe.Mat, delta int) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Brighten"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dst := gocv.NewMat()
	srcMat.ConvertToWithParams(&dst, srcMat.Type(), 1, float32(delta))
	return adopt(dst, "brighten")
}

// ContrastTable maps each intensity through
// ((v/255 - 0.5) * ((100+percent)/100)^2 + 0.5) * 255, clamped to [0,255].
func ContrastTable(percent float64) [256]uint8 {
	var table [256]uint8
	factor := math.Pow((100+percent)/100, 2)
	for i := range table {
		v := ((float64(i)/255-0.5)*factor + 0.5) * 255
		table[i] = uint8(lo.Clamp(v, 0, 255))
	}
	return table
}

func Contrast(src *safe.Mat, percent float64) (*safe.Mat, error) {
	return ApplyLUT(src, ContrastTable(percent))
}

// HueShiftTable rotates OpenCV 8-bit hues (0..179) by degrees.
// Entries above 179 map to themselves.
func HueShiftTable(degrees int) [256]uint8 {
	var table [256]uint8
	shift := ((degrees/2)%180 + 180) % 180
	for i := range table {
		if i < 180 {
			table[i] = uint8((i + shift) % 180)
		} else {
			table[i] = uint8(i)
		}
	}
	return table
}

func HueRotate(src *safe.Mat, degrees int) (*safe.Mat, error) {
	hsv, err := conversion.ConvertBGRToHSV(src)
	if err != nil {
		return nil, fmt.Errorf("HSV conversion failed: %w", err)
	}
	defer hsv.Close()

	channels := gocv.Split(hsv.GetMat())
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()
	if len(channels) != 3 {
		return nil, fmt.Errorf("expected 3 HSV channels, got %d", len(channels))
	}

	lut := tableMat(HueShiftTable(degrees))
	defer lut.Close()

	hue := gocv.NewMat()
	gocv.LUT(channels[0], lut, &hue)
	channels[0].Close()
	channels[0] = hue

	merged := gocv.NewMat()
	gocv.Merge(channels, &merged)
	rotated, err := adopt(merged, "hue_rotated_hsv")
	if err != nil {
		return nil, err
	}
	defer rotated.Close()

	return conversion.ConvertHSVToBGR(rotated)
}

func Invert(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "Invert"); err != nil {
		return nil, err
	}

	dst := gocv.NewMat()
	gocv.BitwiseNot(src.GetMat(), &dst)
	return adopt(dst, "invert")
}

// BinaryThreshold converts src to grayscale and sets pixels brighter
// than low to 255, all others to 0.
func BinaryThreshold(src *safe.Mat, low uint8) (*safe.Mat, error) {
	gray, err := conversion.ConvertToGrayscale(src)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.Threshold(gray.GetMat(), &dst, float32(low), 255, gocv.ThresholdBinary)
	return adopt(dst, "binary_threshold")
}

func ApplyLUT(src *safe.Mat, table [256]uint8) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "LUT"); err != nil {
		return nil, err
	}

	lut := tableMat(table)
	defer lut.Close()

	dst := gocv.NewMat()
	gocv.LUT(src.GetMat(), lut, &dst)
	return adopt(dst, "lut")
}

func tableMat(table [256]uint8) gocv.Mat {
	lut := gocv.NewMatWithSize(1, 256, gocv.MatTypeCV8UC1)
	for i, v := range table {
		lut.SetUCharAt(0, i, v)
	}
	return lut
}

func adopt(mat gocv.Mat, tag string) (*safe.Mat, error) {
	result, err := safe.Adopt(mat, nil, tag)
	if err != nil {
		return nil, fmt.Errorf("%s produced no output: %w", tag, err)
	}
	return result, nil
}
