package histogram

import (
	"context"
	"fmt"

	"ipcli/internal/histogram"
	"ipcli/internal/opencv/bridge"
	"ipcli/internal/opencv/conversion"
	"ipcli/internal/opencv/safe"
)

type Mode int

const (
	ModeGrayscale Mode = iota
	ModeRGB
)

type Processor struct {
	name   string
	suffix string
	mode   Mode
}

func NewGrayscaleProcessor() *Processor {
	return &Processor{name: "histogramGrayscale", suffix: "HistogramGrayscale", mode: ModeGrayscale}
}

func NewRGBProcessor() *Processor {
	return &Processor{name: "histogram", suffix: "Histogram", mode: ModeRGB}
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{}
}

func (p *Processor) ValidateParameters(params map[string]interface{}) error {
	return nil
}

func (p *Processor) OutputSuffix() string    { return p.suffix }
func (p *Processor) OutputExtension() string { return "" }

func (p *Processor) Process(input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, params)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, params map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, p.name); err != nil {
		return nil, err
	}

	series, err := p.Series(input)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	chart := histogram.Render(series...)
	return bridge.ImageToMat(chart, nil, p.name+"_chart")
}

// Series counts the input's intensities: one black series for
// grayscale, or red, green and blue series drawn in that order.
func (p *Processor) Series(input *safe.Mat) ([]histogram.Series, error) {
	switch p.mode {
	case ModeGrayscale:
		gray, err := conversion.ConvertToGrayscale(input)
		if err != nil {
			return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
		}
		defer gray.Close()

		data, err := gray.Bytes()
		if err != nil {
			return nil, err
		}
		return []histogram.Series{{Counts: histogram.CountGray(data), Color: histogram.Black}}, nil

	case ModeRGB:
		bgr, err := conversion.ConvertToBGR(input)
		if err != nil {
			return nil, fmt.Errorf("failed to convert to BGR: %w", err)
		}
		defer bgr.Close()

		data, err := bgr.Bytes()
		if err != nil {
			return nil, err
		}
		counts, err := histogram.CountChannels(data, 3)
		if err != nil {
			return nil, err
		}
		return []histogram.Series{
			{Counts: counts[2], Color: histogram.Red},
			{Counts: counts[1], Color: histogram.Green},
			{Counts: counts[0], Color: histogram.Blue},
		}, nil

	default:
		return nil, fmt.Errorf("unknown histogram mode: %d", p.mode)
	}
}
