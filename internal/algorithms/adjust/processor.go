// Package adjust provides the single-step image operations: each one
// parses at most one value and maps the input through one filter.
package adjust

import (
	"context"
	"fmt"

	"ipcli/internal/algorithms/params"
	"ipcli/internal/opencv/conversion"
	"ipcli/internal/opencv/filter"
	"ipcli/internal/opencv/safe"
)

type applyFunc func(input *safe.Mat, value interface{}) (*safe.Mat, error)

type valueSpec struct {
	hint     string
	parse    func(raw string) (interface{}, error)
	validate func(value interface{}) error
}

type Processor struct {
	name   string
	suffix string
	value  *valueSpec
	apply  applyFunc
}

func (p *Processor) GetName() string {
	return p.name
}

func (p *Processor) GetDefaultParameters() map[string]interface{} {
	return map[string]interface{}{}
}

func (p *Processor) ValidateParameters(parameters map[string]interface{}) error {
	if p.value == nil {
		return nil
	}
	if !params.Has(parameters, params.ValueKey) {
		return fmt.Errorf("%s: %w (%s)", p.name, params.ErrMissingValue, p.value.hint)
	}
	if p.value.validate != nil {
		if err := p.value.validate(parameters[params.ValueKey]); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	return nil
}

// ParseValue converts the raw CLI value. Operations that take no value
// ignore it.
func (p *Processor) ParseValue(raw string) (map[string]interface{}, error) {
	if p.value == nil {
		return map[string]interface{}{}, nil
	}

	v, err := p.value.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", p.name, err, p.value.hint)
	}
	return map[string]interface{}{params.ValueKey: v}, nil
}

// ValueHint describes the expected value, or is empty when none is taken.
func (p *Processor) ValueHint() string {
	if p.value == nil {
		return ""
	}
	return p.value.hint
}

func (p *Processor) OutputSuffix() string    { return p.suffix }
func (p *Processor) OutputExtension() string { return "" }

func (p *Processor) Process(input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	return p.ProcessWithContext(context.Background(), input, parameters)
}

func (p *Processor) ProcessWithContext(ctx context.Context, input *safe.Mat, parameters map[string]interface{}) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(input, p.name); err != nil {
		return nil, err
	}

	if err := p.ValidateParameters(parameters); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var value interface{}
	if p.value != nil {
		value = parameters[params.ValueKey]
	}

	result, err := p.apply(input, value)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", p.name, err)
	}
	return result, nil
}

func NewCopy() *Processor {
	return &Processor{
		name:   "copy",
		suffix: "Copy",
		apply: func(input *safe.Mat, _ interface{}) (*safe.Mat, error) {
			return input.Clone()
		},
	}
}

func NewThumbnail() *Processor {
	return &Processor{
		name:   "thumbnail",
		suffix: "Thumbnail",
		value: &valueSpec{
			hint: "maximum side length in pixels",
			parse: func(raw string) (interface{}, error) {
				v, err := params.ParseUint(raw, 32)
				return uint(v), err
			},
			validate: func(value interface{}) error {
				if size, ok := value.(uint); !ok || size == 0 {
					return fmt.Errorf("thumbnail size must be a positive integer, got %v", value)
				}
				return nil
			},
		},
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.Thumbnail(input, int(value.(uint)))
		},
	}
}

func NewBlur() *Processor {
	return &Processor{
		name:   "blur",
		suffix: "GaussianBlur",
		value: &valueSpec{
			hint: "gaussian sigma",
			parse: func(raw string) (interface{}, error) {
				return params.ParseFloat(raw)
			},
			validate: func(value interface{}) error {
				if sigma, ok := value.(float64); !ok || !(sigma > 0) {
					return fmt.Errorf("blur sigma must be positive, got %v", value)
				}
				return nil
			},
		},
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.GaussianBlur(input, value.(float64))
		},
	}
}

func NewBrighten() *Processor {
	return &Processor{
		name:   "brighten",
		suffix: "Brighten",
		value:  intValue("amount added to every channel"),
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.Brighten(input, value.(int))
		},
	}
}

func NewHueRotate() *Processor {
	return &Processor{
		name:   "huerotate",
		suffix: "Huerotate",
		value:  intValue("hue rotation in degrees"),
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.HueRotate(input, value.(int))
		},
	}
}

func NewContrast() *Processor {
	return &Processor{
		name:   "contrast",
		suffix: "AdjustContrast",
		value: &valueSpec{
			hint: "contrast change in percent",
			parse: func(raw string) (interface{}, error) {
				return params.ParseFloat(raw)
			},
			validate: func(value interface{}) error {
				if _, ok := value.(float64); !ok {
					return fmt.Errorf("contrast must be a number, got %v", value)
				}
				return nil
			},
		},
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.Contrast(input, value.(float64))
		},
	}
}

func NewGrayscale() *Processor {
	return &Processor{
		name:   "grayscale",
		suffix: "Grayscale",
		apply: func(input *safe.Mat, _ interface{}) (*safe.Mat, error) {
			return conversion.ConvertToGrayscale(input)
		},
	}
}

func NewInvert() *Processor {
	return &Processor{
		name:   "invert",
		suffix: "Invert",
		apply: func(input *safe.Mat, _ interface{}) (*safe.Mat, error) {
			return filter.Invert(input)
		},
	}
}

func NewBinaryThreshold() *Processor {
	return &Processor{
		name:   "binaryThreshold",
		suffix: "BinaryThreshold",
		value: &valueSpec{
			hint: "intensity 0-255; brighter pixels become white",
			parse: func(raw string) (interface{}, error) {
				v, err := params.ParseUint(raw, 8)
				return uint8(v), err
			},
			validate: func(value interface{}) error {
				if _, ok := value.(uint8); !ok {
					return fmt.Errorf("threshold must be an integer in 0-255, got %v", value)
				}
				return nil
			},
		},
		apply: func(input *safe.Mat, value interface{}) (*safe.Mat, error) {
			return filter.BinaryThreshold(input, value.(uint8))
		},
	}
}

func intValue(hint string) *valueSpec {
	return &valueSpec{
		hint: hint,
		parse: func(raw string) (interface{}, error) {
			return params.ParseInt(raw)
		},
		validate: func(value interface{}) error {
			if _, ok := value.(int); !ok {
				return fmt.Errorf("value must be an integer, got %v", value)
			}
			return nil
		},
	}
}

// All returns every single-step operation.
func All() []*Processor {
	return []*Processor{
		NewCopy(),
		NewThumbnail(),
		NewBlur(),
		NewBrighten(),
		NewHueRotate(),
		NewContrast(),
		NewGrayscale(),
		NewInvert(),
		NewBinaryThreshold(),
	}
}
