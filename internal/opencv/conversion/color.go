package conversion

import (
	"fmt"

	"ipcli/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func CvtColorSafe(src *safe.Mat, dst *safe.Mat, code gocv.ColorConversionCode) error {
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return fmt.Errorf("color conversion validation failed: %w", err)
	}

	if err := safe.ValidateMatForOperation(dst, "CvtColor destination"); err != nil {
		return fmt.Errorf("destination mat validation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	gocv.CvtColor(srcMat, &dstMat, code)

	return nil
}

func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "ConvertToGrayscale"); err != nil {
		return nil, err
	}

	channels := src.Channels()

	if channels == 1 {
		return src.Clone()
	}

	var conversionCode gocv.ColorConversionCode
	switch channels {
	case 3:
		conversionCode = gocv.ColorBGRToGray
	case 4:
		conversionCode = gocv.ColorBGRAToGray
	default:
		return nil, fmt.Errorf("unsupported channel count for grayscale conversion: %d", channels)
	}

	return convert(src, gocv.MatTypeCV8UC1, conversionCode)
}

func ConvertToBGR(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "ConvertToBGR"); err != nil {
		return nil, err
	}

	channels := src.Channels()

	if channels == 3 {
		return src.Clone()
	}

	var conversionCode gocv.ColorConversionCode
	switch channels {
	case 1:
		conversionCode = gocv.ColorGrayToBGR
	case 4:
		conversionCode = gocv.ColorBGRAToBGR
	default:
		return nil, fmt.Errorf("unsupported channel count for BGR conversion: %d", channels)
	}

	return convert(src, gocv.MatTypeCV8UC3, conversionCode)
}

// ConvertBGRToHSV uses OpenCV's 8-bit HSV layout: hue in [0,180).
func ConvertBGRToHSV(src *safe.Mat) (*safe.Mat, error) {
	bgr, err := ConvertToBGR(src)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	return convert(bgr, gocv.MatTypeCV8UC3, gocv.ColorBGRToHSV)
}

func ConvertHSVToBGR(src *safe.Mat) (*safe.Mat, error) {
	return convert(src, gocv.MatTypeCV8UC3, gocv.ColorHSVToBGR)
}

func convert(src *safe.Mat, dstType gocv.MatType, code gocv.ColorConversionCode) (*safe.Mat, error) {
	dst, err := safe.NewMat(src.Rows(), src.Cols(), dstType)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	if err := CvtColorSafe(src, dst, code); err != nil {
		dst.Close()
		return nil, fmt.Errorf("color conversion failed: %w", err)
	}

	return dst, nil
}
