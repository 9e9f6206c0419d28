package canny

import (
	"context"
	"fmt"
	"time"

	"ipcli/internal/algorithms/params"
	detect "ipcli/internal/canny"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/bridge"
	"ipcli/internal/opencv/conversion"
	"ipcli/internal/opencv/filter"
	"ipcli/internal/opencv/safe"
)

const (
	ParamSigma         = "sigma"
	ParamLowThreshold  = "low_threshold"
	ParamHighThreshold = "high_threshold"
	ParamConnectivity  = "connectivity"
	ParamWorkers       = "workers"
)

type Processor struct {
	name   string
	logger logger.Logger
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{
		name:   "canny",
		logger: log,
	}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{
		ParamSigma:         detect.DefaultSigma,
		ParamLowThreshold:  detect.DefaultLowThreshold,
		ParamHighThreshold: detect.DefaultHighThreshold,
		ParamConnectivity:  detect.ConnectivityRaster.String(),
		ParamWorkers:       0,
	}
}

func (p *Processor) ValidateParameters(params map[string]interface{}) error {
	_, err := ConfigFromParameters(params)
	return err
}

// OutputSuffix and OutputExtension make the result land at
// "<input>.jpg" with "Canny" inserted before the extension.
func (p *Processor) OutputSuffix() string    { return "Canny" }
func (p *Processor) OutputExtension() string { return ".jpg" }

func (p *Processor) Process(input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, params)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, "Canny edge detection"); err != nil {
		return nil, err
	}

	cfg, err := ConfigFromParameters(params)
	if err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	start := time.Now()

	field, err := p.gradientField(ctx, input, cfg.Sigma)
	if err != nil {
		return nil, err
	}

	gradientTime := time.Since(start)

	mask, err := detect.Detect(ctx, field, cfg)
	if err != nil {
		return nil, fmt.Errorf("edge detection failed: %w", err)
	}

	p.logger.Debug("Canny", "edges detected", map[string]interface{}{
		"width":         mask.Width,
		"height":        mask.Height,
		"edge_pixels":   mask.Count(),
		"sigma":         cfg.Sigma,
		"low":           cfg.LowThreshold,
		"high":          cfg.HighThreshold,
		"connectivity":  cfg.Connectivity.String(),
		"gradient_time": gradientTime,
		"total_time":    time.Since(start),
	})

	result, err := bridge.EdgeMaskToMat(mask, nil, "canny_edges")
	if err != nil {
		return nil, fmt.Errorf("failed to convert edge mask: %w", err)
	}
	return result, nil
}

// gradientField builds the Sobel gradients of the blurred grayscale input.
func (p *Processor) gradientField(ctx context.Context, input *safe.Mat, sigma float64) (*detect.GradientField, error) {
	gray, err := conversion.ConvertToGrayscale(input)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	defer gray.Close()

	blurred, err := filter.GaussianBlur(gray, sigma)
	if err != nil {
		return nil, fmt.Errorf("gaussian blur failed: %w", err)
	}
	defer blurred.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	gxMat, gyMat, err := filter.Sobel(blurred)
	if err != nil {
		return nil, fmt.Errorf("gradient computation failed: %w", err)
	}
	defer gxMat.Close()
	defer gyMat.Close()

	gx, err := bridge.MatToScalarBuffer(gxMat)
	if err != nil {
		return nil, fmt.Errorf("failed to read horizontal gradient: %w", err)
	}
	gy, err := bridge.MatToScalarBuffer(gyMat)
	if err != nil {
		return nil, fmt.Errorf("failed to read vertical gradient: %w", err)
	}

	return detect.NewGradientField(gx, gy)
}

// ConfigFromParameters reads a detection config from a parameter map,
// falling back to the package defaults for absent keys.
func ConfigFromParameters(p map[string]interface{}) (detect.Config, error) {
	connectivity, err := detect.ParseConnectivity(params.String(p, ParamConnectivity, ""))
	if err != nil {
		return detect.Config{}, err
	}

	cfg := detect.Config{
		Sigma:         params.Float(p, ParamSigma, detect.DefaultSigma),
		LowThreshold:  params.Float(p, ParamLowThreshold, detect.DefaultLowThreshold),
		HighThreshold: params.Float(p, ParamHighThreshold, detect.DefaultHighThreshold),
		Connectivity:  connectivity,
		Workers:       params.Int(p, ParamWorkers, 0),
	}

	if err := cfg.Validate(); err != nil {
		return detect.Config{}, err
	}
	return cfg, nil
}
