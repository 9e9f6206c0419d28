package bridge

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"ipcli/internal/canny"
	"ipcli/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func MatToImage(mat *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(mat, "MatToImage"); err != nil {
		return nil, err
	}

	rows := mat.Rows()
	cols := mat.Cols()
	channels := mat.Channels()

	if mat.Type() != gocv.MatTypeCV8UC1 && mat.Type() != gocv.MatTypeCV8UC3 && mat.Type() != gocv.MatTypeCV8UC4 {
		return nil, fmt.Errorf("unsupported Mat type for image conversion: %v", mat.Type())
	}

	data, err := mat.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read Mat data: %w", err)
	}

	switch channels {
	case 1:
		return matToGray(data, rows, cols), nil
	case 3:
		return matToRGBA(data, rows, cols), nil
	case 4:
		return matToRGBAWithAlpha(data, rows, cols), nil
	default:
		return nil, fmt.Errorf("unsupported number of channels: %d", channels)
	}
}

func matToGray(data []byte, rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	copy(img.Pix, data)
	return img
}

func matToRGBA(data []byte, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))

	for i, j := 0, 0; i < rows*cols; i, j = i+1, j+3 {
		o := i * 4
		img.Pix[o+0] = data[j+2]
		img.Pix[o+1] = data[j+1]
		img.Pix[o+2] = data[j+0]
		img.Pix[o+3] = 255
	}

	return img
}

func matToRGBAWithAlpha(data []byte, rows, cols int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))

	for i := 0; i < rows*cols; i++ {
		o := i * 4
		img.Pix[o+0] = data[o+2]
		img.Pix[o+1] = data[o+1]
		img.Pix[o+2] = data[o+0]
		img.Pix[o+3] = data[o+3]
	}

	return img
}

// ImageToMat converts img to a CV_8UC1 Mat when it is grayscale and to
// a BGR CV_8UC3 Mat otherwise.
func ImageToMat(img image.Image, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has zero dimensions: %dx%d", width, height)
	}

	switch typedImg := img.(type) {
	case *image.Gray:
		return grayToMat(typedImg, width, height, tracker, tag)
	default:
		return colorToMat(img, width, height, tracker, tag)
	}
}

func grayToMat(img *image.Gray, width, height int, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	pix := img.Pix
	if img.Stride != width || img.Rect.Min != (image.Point{}) {
		packed := image.NewGray(image.Rect(0, 0, width, height))
		draw.Draw(packed, packed.Bounds(), img, img.Rect.Min, draw.Src)
		pix = packed.Pix
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from gray pixels: %w", err)
	}
	defer mat.Close()

	return safe.NewMatFromMatWithTracker(mat, tracker, tag)
}

func colorToMat(img image.Image, width, height int, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	bounds := img.Bounds()
	data := make([]byte, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			o := (y*width + x) * 3
			data[o+0] = c.B
			data[o+1] = c.G
			data[o+2] = c.R
		}
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from color pixels: %w", err)
	}
	defer mat.Close()

	return safe.NewMatFromMatWithTracker(mat, tracker, tag)
}

// MatToScalarBuffer copies a single-channel CV_32F Mat into a row-major buffer.
func MatToScalarBuffer(mat *safe.Mat) (*canny.ScalarBuffer, error) {
	if err := safe.ValidateMatForOperation(mat, "MatToScalarBuffer"); err != nil {
		return nil, err
	}

	data, err := mat.Float32s()
	if err != nil {
		return nil, err
	}

	pix := make([]float64, len(data))
	for i, v := range data {
		pix[i] = float64(v)
	}

	return canny.NewScalarBufferFrom(mat.Cols(), mat.Rows(), pix)
}

// EdgeMaskToMat returns the mask as a CV_8UC1 Mat with 255 for edges.
func EdgeMaskToMat(mask *canny.EdgeMask, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if mask == nil {
		return nil, fmt.Errorf("edge mask is nil")
	}
	return grayToMat(mask.Image(), mask.Width, mask.Height, tracker, tag)
}
