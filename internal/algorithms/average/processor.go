package average

import (
	"fmt"

	"ipcli/internal/opencv/conversion"
	"ipcli/internal/opencv/safe"
)

// Color is a mean colour with channels truncated to integers.
type Color struct {
	R, G, B int
}

func (c Color) String() string {
	return fmt.Sprintf("Average color is: RGB %d %d %d", c.R, c.G, c.B)
}

// Processor reports the mean colour of an image instead of producing one.
type Processor struct {
	name string
}

func NewProcessor() *Processor {
	return &Processor{name: "average"}
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

func (p *Processor) Report(input *safe.Mat, params map[string]interface{}) (string, error) {
	c, err := Mean(input)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

func Mean(input *safe.Mat) (Color, error) {
	bgr, err := conversion.ConvertToBGR(input)
	if err != nil {
		return Color{}, fmt.Errorf("failed to convert to BGR: %w", err)
	}
	defer bgr.Close()

	mat := bgr.GetMat()
	s := mat.Mean()
	return Color{R: int(s.Val3), G: int(s.Val2), B: int(s.Val1)}, nil
}
