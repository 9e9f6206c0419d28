package adjust

import (
	"errors"
	"testing"

	"ipcli/internal/algorithms/params"
	"ipcli/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		proc    *Processor
		raw     string
		want    interface{}
		wantErr bool
	}{
		{NewThumbnail(), "64", uint(64), false},
		{NewThumbnail(), "-1", nil, true},
		{NewBlur(), "2.5", 2.5, false},
		{NewBrighten(), "-20", -20, false},
		{NewHueRotate(), "90", 90, false},
		{NewContrast(), "15.5", 15.5, false},
		{NewBinaryThreshold(), "128", uint8(128), false},
		{NewBinaryThreshold(), "300", nil, true},
		{NewBrighten(), "bright", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.proc.GetName()+"/"+tt.raw, func(t *testing.T) {
			got, err := tt.proc.ParseValue(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseValue(%q) expected error, got %v", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseValue(%q) error = %v", tt.raw, err)
			}
			if got[params.ValueKey] != tt.want {
				t.Errorf("ParseValue(%q) = %#v, want %#v", tt.raw, got[params.ValueKey], tt.want)
			}
		})
	}
}

func TestMissingValue(t *testing.T) {
	for _, p := range All() {
		if p.ValueHint() == "" {
			if err := p.ValidateParameters(nil); err != nil {
				t.Errorf("%s: ValidateParameters(nil) error = %v", p.GetName(), err)
			}
			continue
		}

		if _, err := p.ParseValue(""); !errors.Is(err, params.ErrMissingValue) {
			t.Errorf("%s: ParseValue(\"\") error = %v, want ErrMissingValue", p.GetName(), err)
		}
		if err := p.ValidateParameters(map[string]interface{}{}); !errors.Is(err, params.ErrMissingValue) {
			t.Errorf("%s: ValidateParameters() error = %v, want ErrMissingValue", p.GetName(), err)
		}
	}
}

func TestValueIgnoredWhenNotTaken(t *testing.T) {
	got, err := NewGrayscale().ParseValue("whatever")
	if err != nil {
		t.Fatalf("ParseValue() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ParseValue() = %v, want empty", got)
	}
}

func TestValidateRejectsNonPositive(t *testing.T) {
	if err := NewThumbnail().ValidateParameters(map[string]interface{}{params.ValueKey: uint(0)}); err == nil {
		t.Error("thumbnail size 0 accepted")
	}
	if err := NewBlur().ValidateParameters(map[string]interface{}{params.ValueKey: 0.0}); err == nil {
		t.Error("blur sigma 0 accepted")
	}
}

func TestSuffixes(t *testing.T) {
	want := map[string]string{
		"copy":            "Copy",
		"thumbnail":       "Thumbnail",
		"blur":            "GaussianBlur",
		"brighten":        "Brighten",
		"huerotate":       "Huerotate",
		"contrast":        "AdjustContrast",
		"grayscale":       "Grayscale",
		"invert":          "Invert",
		"binaryThreshold": "BinaryThreshold",
	}

	procs := All()
	if len(procs) != len(want) {
		t.Fatalf("All() returned %d operations, want %d", len(procs), len(want))
	}
	for _, p := range procs {
		if got := p.OutputSuffix(); got != want[p.GetName()] {
			t.Errorf("%s suffix = %q, want %q", p.GetName(), got, want[p.GetName()])
		}
		if p.OutputExtension() != "" {
			t.Errorf("%s forces extension %q", p.GetName(), p.OutputExtension())
		}
	}
}

func TestProcessInvertAndThreshold(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC1)
	mat.SetUCharAt(0, 0, 10)
	mat.SetUCharAt(0, 1, 100)
	mat.SetUCharAt(1, 0, 101)
	mat.SetUCharAt(1, 1, 255)
	input, err := safe.Adopt(mat, nil, "input")
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	defer input.Close()

	inverted, err := NewInvert().Process(input, nil)
	if err != nil {
		t.Fatalf("invert error = %v", err)
	}
	defer inverted.Close()
	if v, _ := inverted.GetUCharAt(0, 0); v != 245 {
		t.Errorf("inverted (0,0) = %d, want 245", v)
	}

	thresholded, err := NewBinaryThreshold().Process(input, map[string]interface{}{params.ValueKey: uint8(100)})
	if err != nil {
		t.Fatalf("binaryThreshold error = %v", err)
	}
	defer thresholded.Close()

	want := [2][2]uint8{{0, 0}, {255, 255}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if v, _ := thresholded.GetUCharAt(y, x); v != want[y][x] {
				t.Errorf("threshold (%d,%d) = %d, want %d", x, y, v, want[y][x])
			}
		}
	}
}
