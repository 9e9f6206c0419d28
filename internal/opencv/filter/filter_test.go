package filter

import (
	"testing"

	"ipcli/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestGaussianKernelSize(t *testing.T) {
	tests := []struct {
		sigma float64
		want  int
	}{
		{1.4, 9},
		{1.0, 7},
		{0.5, 5},
		{0.1, 1},
		{2.0, 13},
	}
	for _, tt := range tests {
		if got := GaussianKernelSize(tt.sigma); got != tt.want {
			t.Errorf("GaussianKernelSize(%v) = %d, want %d", tt.sigma, got, tt.want)
		}
		if GaussianKernelSize(tt.sigma)%2 == 0 {
			t.Errorf("GaussianKernelSize(%v) is even", tt.sigma)
		}
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, size   int
		wantW, wantH int
	}{
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{50, 50, 100, 100, 100},
		{1000, 1, 10, 10, 1},
		{0, 10, 10, 0, 0},
	}
	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, tt.size)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitWithin(%d, %d, %d) = %d,%d, want %d,%d", tt.w, tt.h, tt.size, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestContrastTable(t *testing.T) {
	identity := ContrastTable(0)
	for i, v := range identity {
		if d := int(v) - i; d < -1 || d > 1 {
			t.Fatalf("ContrastTable(0)[%d] = %d, want about %d", i, v, i)
		}
	}

	stronger := ContrastTable(100)
	if stronger[0] != 0 || stronger[255] != 255 {
		t.Errorf("ContrastTable(100) ends = %d,%d, want 0,255", stronger[0], stronger[255])
	}
	if stronger[64] >= identity[64] || stronger[192] <= identity[192] {
		t.Error("ContrastTable(100) does not spread intensities away from the middle")
	}

	flat := ContrastTable(-100)
	if flat[0] != flat[255] {
		t.Errorf("ContrastTable(-100) ends = %d,%d, want equal", flat[0], flat[255])
	}
}

func TestHueShiftTable(t *testing.T) {
	tests := []struct {
		degrees int
		in      int
		want    uint8
	}{
		{0, 17, 17},
		{180, 0, 90},
		{180, 100, 10},
		{-60, 10, 160},
		{360, 42, 42},
		{90, 200, 200},
	}
	for _, tt := range tests {
		if got := HueShiftTable(tt.degrees)[tt.in]; got != tt.want {
			t.Errorf("HueShiftTable(%d)[%d] = %d, want %d", tt.degrees, tt.in, got, tt.want)
		}
	}
}

func newGray(t *testing.T, rows, cols int, value float64) *safe.Mat {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, value, value, 0), rows, cols, gocv.MatTypeCV8UC1)
	m, err := safe.Adopt(mat, nil, "test")
	if err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	return m
}

func TestSobelVerticalStep(t *testing.T) {
	src := newGray(t, 5, 6, 0)
	defer src.Close()
	for y := 0; y < 5; y++ {
		for x := 3; x < 6; x++ {
			if err := src.SetUCharAt(y, x, 255); err != nil {
				t.Fatal(err)
			}
		}
	}

	gx, gy, err := Sobel(src)
	if err != nil {
		t.Fatalf("Sobel() error = %v", err)
	}
	defer gx.Close()
	defer gy.Close()

	if gx.Type() != gocv.MatTypeCV32FC1 {
		t.Fatalf("gx type = %v, want CV_32FC1", gx.Type())
	}

	// Replicated borders keep the top and bottom rows identical to the rest.
	for _, y := range []int{0, 2, 4} {
		for x := 0; x < 6; x++ {
			want := float32(0)
			if x == 2 || x == 3 {
				want = 4 * 255
			}
			if v, _ := gx.GetFloatAt(y, x); v != want {
				t.Errorf("gx(%d,%d) = %v, want %v", x, y, v, want)
			}
			if v, _ := gy.GetFloatAt(y, x); v != 0 {
				t.Errorf("gy(%d,%d) = %v, want 0", x, y, v)
			}
		}
	}
}

func TestSobelRejectsColor(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 3, 3, gocv.MatTypeCV8UC3)
	src, err := safe.Adopt(mat, nil, "color")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if _, _, err := Sobel(src); err == nil {
		t.Error("expected error for 3-channel input")
	}
}

func TestBrightenSaturates(t *testing.T) {
	src := newGray(t, 2, 2, 250)
	defer src.Close()

	up, err := Brighten(src, 20)
	if err != nil {
		t.Fatalf("Brighten() error = %v", err)
	}
	defer up.Close()
	if v, _ := up.GetUCharAt(0, 0); v != 255 {
		t.Errorf("brightened = %d, want 255", v)
	}

	down, err := Brighten(src, -300)
	if err != nil {
		t.Fatalf("Brighten() error = %v", err)
	}
	defer down.Close()
	if v, _ := down.GetUCharAt(1, 1); v != 0 {
		t.Errorf("darkened = %d, want 0", v)
	}
}

func TestThumbnailKeepsAspect(t *testing.T) {
	src := newGray(t, 40, 80, 128)
	defer src.Close()

	thumb, err := Thumbnail(src, 20)
	if err != nil {
		t.Fatalf("Thumbnail() error = %v", err)
	}
	defer thumb.Close()

	if thumb.Cols() != 20 || thumb.Rows() != 10 {
		t.Errorf("thumbnail is %dx%d, want 20x10", thumb.Cols(), thumb.Rows())
	}
}

func TestGaussianBlurRejectsSigma(t *testing.T) {
	src := newGray(t, 4, 4, 0)
	defer src.Close()

	if _, err := GaussianBlur(src, 0); err == nil {
		t.Error("expected error for zero sigma")
	}
}

func TestHueRotateKeepsGray(t *testing.T) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 90, 90, 0), 2, 2, gocv.MatTypeCV8UC3)
	src, err := safe.Adopt(mat, nil, "gray_bgr")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	rotated, err := HueRotate(src, 120)
	if err != nil {
		t.Fatalf("HueRotate() error = %v", err)
	}
	defer rotated.Close()

	for c := 0; c < 3; c++ {
		if v, _ := rotated.GetUCharAt3(0, 0, c); v != 90 {
			t.Errorf("channel %d = %d, want 90", c, v)
		}
	}
}
