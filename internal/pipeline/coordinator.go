package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
	"time"

	"ipcli/internal/algorithms"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/memory"
	"ipcli/internal/opencv/safe"
)

type ImageProcessor interface {
	ProcessImage(inputData *ImageData, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error)
	ProcessImageWithContext(ctx context.Context, inputData *ImageData, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error)
	Report(inputData *ImageData, reporter algorithms.Reporter, params map[string]interface{}) (string, error)
}

type ImageLoader interface {
	LoadFromPath(path string) (*ImageData, error)
	LoadFromBytes(data []byte, extension string) (*ImageData, error)
}

type ImageSaver interface {
	SaveToWriter(writer io.Writer, imageData *ImageData, format string) error
	SaveToPath(path string, imageData *ImageData) error
}

type ImageData struct {
	Image    image.Image
	Mat      *safe.Mat
	Width    int
	Height   int
	Channels int
	Format   string
	Path     string
}

// Result describes one completed operation. OutputPath is empty for
// operations that only report text.
type Result struct {
	Operation  string
	OutputPath string
	Report     string
	Duration   time.Duration
}

type Coordinator struct {
	mu               sync.RWMutex
	originalImage    *ImageData
	processedImage   *ImageData
	memoryManager    *memory.Manager
	logger           logger.Logger
	algorithmManager *algorithms.Manager
	loader           ImageLoader
	processor        ImageProcessor
	saver            ImageSaver
}

func NewCoordinator(memMgr *memory.Manager, algMgr *algorithms.Manager, log logger.Logger, jpegQuality int) *Coordinator {
	coord := &Coordinator{
		memoryManager:    memMgr,
		logger:           log,
		algorithmManager: algMgr,
	}

	coord.loader = &imageLoader{
		memoryManager: memMgr,
		logger:        log,
	}

	coord.processor = &imageProcessor{
		memoryManager: memMgr,
		logger:        log,
	}

	coord.saver = &imageSaver{
		logger:      log,
		jpegQuality: jpegQuality,
	}

	log.Debug("Coordinator", "initialized", map[string]interface{}{
		"jpeg_quality": jpegQuality,
	})
	return coord
}

// Run loads inputPath, applies operation with params and either writes
// the result next to the input or returns the operation's report.
// params are merged over the operation's stored defaults.
func (c *Coordinator) Run(ctx context.Context, operation, inputPath string, params map[string]interface{}) (*Result, error) {
	start := time.Now()

	op, err := c.algorithmManager.GetAlgorithm(operation)
	if err != nil {
		return nil, err
	}

	resolved := c.algorithmManager.GetParameters(operation)
	for k, v := range params {
		resolved[k] = v
	}
	if err := op.ValidateParameters(resolved); err != nil {
		return nil, fmt.Errorf("invalid parameters for %s: %w", operation, err)
	}

	input, err := c.LoadImage(inputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{Operation: operation}

	switch alg := op.(type) {
	case algorithms.Reporter:
		report, err := c.processor.Report(input, alg, resolved)
		if err != nil {
			c.logger.Error("Coordinator", err, map[string]interface{}{
				"operation": operation,
			})
			return nil, err
		}
		result.Report = report

	case algorithms.Algorithm:
		processed, err := c.ProcessImageWithContext(ctx, alg, resolved)
		if err != nil {
			return nil, err
		}

		suffix, forcedExt := alg.GetName(), ""
		if namer, ok := alg.(algorithms.OutputNamer); ok {
			suffix, forcedExt = namer.OutputSuffix(), namer.OutputExtension()
		}
		outputPath := DeriveOutputPath(inputPath, suffix, forcedExt)

		if err := c.SaveImage(outputPath, processed); err != nil {
			return nil, err
		}
		result.OutputPath = outputPath

	default:
		return nil, fmt.Errorf("operation %s has no image or report output", operation)
	}

	result.Duration = time.Since(start)

	c.logger.Info("Coordinator", "operation completed", map[string]interface{}{
		"operation": operation,
		"output":    result.OutputPath,
		"duration":  result.Duration,
	})

	return result, nil
}

func (c *Coordinator) LoadImage(path string) (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()

	c.releaseImagesLocked()

	imageData, err := c.loader.LoadFromPath(path)
	if err != nil {
		c.logger.Error("Coordinator", err, map[string]interface{}{
			"operation": "load_image",
			"path":      path,
		})
		return nil, err
	}

	c.originalImage = imageData

	c.logger.Debug("Coordinator", "image loaded", map[string]interface{}{
		"width":     imageData.Width,
		"height":    imageData.Height,
		"channels":  imageData.Channels,
		"format":    imageData.Format,
		"load_time": time.Since(start),
	})

	return imageData, nil
}

func (c *Coordinator) ProcessImageWithContext(ctx context.Context, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.originalImage == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	start := time.Now()
	processedData, err := c.processor.ProcessImageWithContext(ctx, c.originalImage, algorithm, params)
	if err != nil {
		c.logger.Error("Coordinator", err, map[string]interface{}{
			"algorithm": algorithm.GetName(),
		})
		return nil, err
	}

	if c.processedImage != nil && c.processedImage.Mat != nil {
		c.memoryManager.ReleaseMat(c.processedImage.Mat, "processed_image")
	}
	c.processedImage = processedData

	c.logger.Debug("Coordinator", "image processed", map[string]interface{}{
		"algorithm":       algorithm.GetName(),
		"width":           processedData.Width,
		"height":          processedData.Height,
		"processing_time": time.Since(start),
	})

	return processedData, nil
}

func (c *Coordinator) SaveImage(path string, imageData *ImageData) error {
	start := time.Now()
	if err := c.saver.SaveToPath(path, imageData); err != nil {
		c.logger.Error("Coordinator", err, map[string]interface{}{
			"operation": "save_image",
			"path":      path,
		})
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	c.logger.Debug("Coordinator", "image saved", map[string]interface{}{
		"path":      path,
		"save_time": time.Since(start),
	})

	return nil
}

func (c *Coordinator) SaveImageToWriter(writer io.Writer, imageData *ImageData, format string) error {
	return c.saver.SaveToWriter(writer, imageData, format)
}

func (c *Coordinator) GetOriginalImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.originalImage
}

func (c *Coordinator) GetProcessedImage() *ImageData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processedImage
}

func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseImagesLocked()
	c.logger.Debug("Coordinator", "shutdown completed", nil)
}

func (c *Coordinator) releaseImagesLocked() {
	if c.originalImage != nil && c.originalImage.Mat != nil {
		c.memoryManager.ReleaseMat(c.originalImage.Mat, "original_image")
	}
	c.originalImage = nil

	if c.processedImage != nil && c.processedImage.Mat != nil {
		c.memoryManager.ReleaseMat(c.processedImage.Mat, "processed_image")
	}
	c.processedImage = nil
}
