package pipeline

import (
	"context"
	"fmt"

	"ipcli/internal/algorithms"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/bridge"
	"ipcli/internal/opencv/memory"
	"ipcli/internal/opencv/safe"
)

type imageProcessor struct {
	memoryManager *memory.Manager
	logger        logger.Logger
}

func (p *imageProcessor) ProcessImage(inputData *ImageData, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error) {
	return p.ProcessImageWithContext(context.Background(), inputData, algorithm, params)
}

func (p *imageProcessor) ProcessImageWithContext(ctx context.Context, inputData *ImageData, algorithm algorithms.Algorithm, params map[string]interface{}) (*ImageData, error) {
	if err := safe.ValidateMatForOperation(inputData.Mat, "ProcessImage"); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var resultMat *safe.Mat
	var err error

	if contextualAlg, ok := algorithm.(algorithms.ContextualAlgorithm); ok {
		resultMat, err = contextualAlg.ProcessWithContext(ctx, inputData.Mat, params)
	} else {
		resultMat, err = algorithm.Process(inputData.Mat, params)
	}

	if err != nil {
		return nil, fmt.Errorf("algorithm processing failed: %w", err)
	}

	if resultMat == nil {
		return nil, fmt.Errorf("algorithm returned nil result")
	}

	// Results are created outside the ledger; record them so shutdown
	// can report anything left open.
	p.memoryManager.Track(resultMat, "processing_result")

	select {
	case <-ctx.Done():
		p.memoryManager.ReleaseMat(resultMat, "processing_result")
		return nil, ctx.Err()
	default:
	}

	resultImage, err := bridge.MatToImage(resultMat)
	if err != nil {
		p.memoryManager.ReleaseMat(resultMat, "processing_result")
		return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
	}

	bounds := resultImage.Bounds()
	processedData := &ImageData{
		Image:    resultImage,
		Mat:      resultMat,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: resultMat.Channels(),
		Format:   inputData.Format,
		Path:     inputData.Path,
	}

	p.logger.Info("ImageProcessor", "processing completed", map[string]interface{}{
		"algorithm":   algorithm.GetName(),
		"input_size":  fmt.Sprintf("%dx%d", inputData.Width, inputData.Height),
		"output_size": fmt.Sprintf("%dx%d", processedData.Width, processedData.Height),
		"image_type":  fmt.Sprintf("%T", resultImage),
	})

	return processedData, nil
}

func (p *imageProcessor) Report(inputData *ImageData, reporter algorithms.Reporter, params map[string]interface{}) (string, error) {
	if err := safe.ValidateMatForOperation(inputData.Mat, "Report"); err != nil {
		return "", err
	}

	report, err := reporter.Report(inputData.Mat, params)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", reporter.GetName(), err)
	}
	return report, nil
}
