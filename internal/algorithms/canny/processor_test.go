package canny

import (
	"context"
	"errors"
	"testing"

	detect "ipcli/internal/canny"
	"ipcli/internal/logger"
	"ipcli/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestConfigFromParameters(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]interface{}
		want    detect.Config
		wantErr error
	}{
		{
			name:   "defaults",
			params: map[string]interface{}{},
			want:   detect.DefaultConfig(),
		},
		{
			name: "overrides",
			params: map[string]interface{}{
				ParamSigma:         2.0,
				ParamLowThreshold:  5,
				ParamHighThreshold: 80.0,
				ParamConnectivity:  "full",
				ParamWorkers:       3,
			},
			want: detect.Config{
				Sigma:         2.0,
				LowThreshold:  5,
				HighThreshold: 80,
				Connectivity:  detect.ConnectivityFull,
				Workers:       3,
			},
		},
		{
			name:    "zero sigma",
			params:  map[string]interface{}{ParamSigma: 0.0},
			wantErr: detect.ErrInvalidSigma,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConfigFromParameters(tt.params)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("config = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfigFromParametersRejectsConnectivity(t *testing.T) {
	if _, err := ConfigFromParameters(map[string]interface{}{ParamConnectivity: "diagonal"}); err == nil {
		t.Error("expected error for unknown connectivity")
	}
}

func TestProcessVerticalStep(t *testing.T) {
	const width, height = 20, 12

	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			for c := 0; c < 3; c++ {
				mat.SetUCharAt3(y, x, c, 255)
			}
		}
	}
	input, err := safe.Adopt(mat, nil, "step")
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	defer input.Close()

	p := NewProcessor(logger.NewNop())
	result, err := p.ProcessWithContext(context.Background(), input, p.GetDefaultParameters())
	if err != nil {
		t.Fatalf("ProcessWithContext() error = %v", err)
	}
	defer result.Close()

	if result.Rows() != height || result.Cols() != width || result.Channels() != 1 {
		t.Fatalf("result is %dx%dx%d, want %dx%dx1", result.Cols(), result.Rows(), result.Channels(), width, height)
	}

	for y := 0; y < height; y++ {
		edges := 0
		for x := 0; x < width; x++ {
			v, err := result.GetUCharAt(y, x)
			if err != nil {
				t.Fatalf("GetUCharAt() error = %v", err)
			}
			switch v {
			case detect.EdgeValue:
				edges++
				if x < width/2-3 || x > width/2+2 {
					t.Errorf("edge at (%d,%d) is far from the step", x, y)
				}
			case detect.BackgroundValue:
			default:
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
		if edges == 0 || edges > 2 {
			t.Errorf("row %d has %d edge pixels, want 1 or 2", y, edges)
		}
	}
}

func TestProcessCancelled(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 8, 8, gocv.MatTypeCV8UC1)
	input, err := safe.Adopt(mat, nil, "flat")
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	defer input.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProcessor(logger.NewNop())
	if _, err := p.ProcessWithContext(ctx, input, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
