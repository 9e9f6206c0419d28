package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"ipcli/internal/logger"
	"ipcli/internal/opencv/bridge"
	"ipcli/internal/opencv/memory"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type imageLoader struct {
	memoryManager *memory.Manager
	logger        logger.Logger
}

func (l *imageLoader) LoadFromPath(path string) (*ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}

	imageData, err := l.LoadFromBytes(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	imageData.Path = path

	return imageData, nil
}

// LoadFromBytes decodes data into a BGR Mat. The Go decoders only sniff
// the format; OpenCV does the actual decoding.
func (l *imageLoader) LoadFromBytes(data []byte, extension string) (*ImageData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	_, standardLibFormat, configErr := image.DecodeConfig(bytes.NewReader(data))
	if configErr != nil {
		l.logger.Debug("ImageLoader", "format not recognised by Go decoders", map[string]interface{}{
			"extension": extension,
			"error":     configErr.Error(),
		})
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("OpenCV decode failed: %w", err)
	}

	safeMat, err := l.memoryManager.Adopt(mat, "loaded_image")
	if err != nil {
		return nil, fmt.Errorf("OpenCV could not decode the data: %w", err)
	}

	img, err := bridge.MatToImage(safeMat)
	if err != nil {
		l.memoryManager.ReleaseMat(safeMat, "loaded_image")
		return nil, fmt.Errorf("failed to convert decoded image: %w", err)
	}

	actualFormat := l.determineActualFormat(extension, standardLibFormat)

	imageData := &ImageData{
		Image:    img,
		Mat:      safeMat,
		Width:    safeMat.Cols(),
		Height:   safeMat.Rows(),
		Channels: safeMat.Channels(),
		Format:   actualFormat,
	}

	l.logger.Info("ImageLoader", "image loaded", map[string]interface{}{
		"width":    imageData.Width,
		"height":   imageData.Height,
		"channels": imageData.Channels,
		"format":   actualFormat,
	})

	return imageData, nil
}

func (l *imageLoader) determineActualFormat(extension, stdLibFormat string) string {
	if stdLibFormat != "" {
		return stdLibFormat
	}

	switch extension {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}
