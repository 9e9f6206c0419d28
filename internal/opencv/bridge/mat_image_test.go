package bridge

import (
	"image"
	"image/color"
	"testing"

	"ipcli/internal/canny"
	"ipcli/internal/opencv/safe"

	"github.com/google/go-cmp/cmp"
	"gocv.io/x/gocv"
)

func TestImageToMatRoundTripColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	img.SetRGBA(0, 0, color.RGBA{R: 200, G: 10, B: 30, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	mat, err := ImageToMat(img, nil, "rgba")
	if err != nil {
		t.Fatalf("ImageToMat() error = %v", err)
	}
	defer mat.Close()

	if mat.Type() != gocv.MatTypeCV8UC3 {
		t.Fatalf("type = %v, want CV_8UC3", mat.Type())
	}
	if b, _ := mat.GetUCharAt3(0, 0, 0); b != 30 {
		t.Errorf("blue at (0,0) = %d, want 30", b)
	}

	back, err := MatToImage(mat)
	if err != nil {
		t.Fatalf("MatToImage() error = %v", err)
	}
	if diff := cmp.Diff(img.Pix, back.(*image.RGBA).Pix); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImageToMatGraySubImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	mat, err := ImageToMat(sub, nil, "gray")
	if err != nil {
		t.Fatalf("ImageToMat() error = %v", err)
	}
	defer mat.Close()

	if mat.Rows() != 2 || mat.Cols() != 2 || mat.Channels() != 1 {
		t.Fatalf("mat is %dx%dx%d, want 2x2x1", mat.Cols(), mat.Rows(), mat.Channels())
	}
	data, err := mat.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{5, 6, 9, 10}, data); diff != "" {
		t.Errorf("pixels mismatch (-want +got):\n%s", diff)
	}
}

func TestImageToMatRejectsEmpty(t *testing.T) {
	if _, err := ImageToMat(nil, nil, ""); err == nil {
		t.Error("expected error for nil image")
	}
	if _, err := ImageToMat(image.NewGray(image.Rect(0, 0, 0, 3)), nil, ""); err == nil {
		t.Error("expected error for zero-width image")
	}
}

func TestMatToScalarBuffer(t *testing.T) {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 3, gocv.MatTypeCV32FC1)
	m.SetFloatAt(0, 2, -4.5)
	m.SetFloatAt(1, 0, 1020)
	mat, err := safe.Adopt(m, nil, "float")
	if err != nil {
		t.Fatal(err)
	}
	defer mat.Close()

	buf, err := MatToScalarBuffer(mat)
	if err != nil {
		t.Fatalf("MatToScalarBuffer() error = %v", err)
	}
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("buffer is %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if buf.At(2, 0) != -4.5 || buf.At(0, 1) != 1020 {
		t.Errorf("samples = %v, %v; want -4.5, 1020", buf.At(2, 0), buf.At(0, 1))
	}
}

func TestMatToScalarBufferRejectsBytes(t *testing.T) {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 2, 2, gocv.MatTypeCV8UC1)
	mat, err := safe.Adopt(m, nil, "bytes")
	if err != nil {
		t.Fatal(err)
	}
	defer mat.Close()

	if _, err := MatToScalarBuffer(mat); err == nil {
		t.Error("expected error for CV_8UC1 input")
	}
}

func TestEdgeMaskToMat(t *testing.T) {
	mask := canny.NewEdgeMask(3, 2)
	mask.Pix[1] = canny.EdgeValue
	mask.Pix[5] = canny.EdgeValue

	mat, err := EdgeMaskToMat(mask, nil, "mask")
	if err != nil {
		t.Fatalf("EdgeMaskToMat() error = %v", err)
	}
	defer mat.Close()

	data, err := mat.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mask.Pix, data); diff != "" {
		t.Errorf("mask mismatch (-want +got):\n%s", diff)
	}
}
