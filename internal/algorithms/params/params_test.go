package params

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGettersFallBack(t *testing.T) {
	p := map[string]interface{}{
		"f":    2.5,
		"i":    7,
		"u8":   uint8(200),
		"s":    "full",
		"nil":  nil,
		"text": "x",
	}

	if got := Float(p, "f", 0); got != 2.5 {
		t.Errorf("Float(f) = %v, want 2.5", got)
	}
	if got := Float(p, "i", 0); got != 7 {
		t.Errorf("Float(i) = %v, want 7", got)
	}
	if got := Float(p, "text", 1.4); got != 1.4 {
		t.Errorf("Float(text) = %v, want fallback 1.4", got)
	}
	if got := Int(p, "u8", 0); got != 200 {
		t.Errorf("Int(u8) = %v, want 200", got)
	}
	if got := Int(p, "missing", 3); got != 3 {
		t.Errorf("Int(missing) = %v, want fallback 3", got)
	}
	if got := String(p, "s", "raster"); got != "full" {
		t.Errorf("String(s) = %q, want full", got)
	}
	if Has(p, "nil") || Has(p, "missing") || !Has(p, "f") {
		t.Error("Has() reported wrong presence")
	}
}

func TestMerge(t *testing.T) {
	base := map[string]interface{}{"a": 1, "b": 2}
	got := Merge(base, map[string]interface{}{"b": 3, "c": 4})

	want := map[string]interface{}{"a": 1, "b": 3, "c": 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
	if base["b"] != 2 {
		t.Error("Merge() modified base")
	}
}

func TestParsers(t *testing.T) {
	if _, err := ParseFloat(" "); !errors.Is(err, ErrMissingValue) {
		t.Errorf("ParseFloat(blank) error = %v, want ErrMissingValue", err)
	}
	if v, err := ParseFloat("1.5"); err != nil || v != 1.5 {
		t.Errorf("ParseFloat(1.5) = %v, %v", v, err)
	}
	if _, err := ParseFloat("abc"); err == nil || errors.Is(err, ErrMissingValue) {
		t.Errorf("ParseFloat(abc) error = %v, want parse error", err)
	}

	if v, err := ParseInt("-30"); err != nil || v != -30 {
		t.Errorf("ParseInt(-30) = %v, %v", v, err)
	}
	if _, err := ParseInt("1.5"); err == nil {
		t.Error("ParseInt(1.5) expected error")
	}

	if v, err := ParseUint("255", 8); err != nil || v != 255 {
		t.Errorf("ParseUint(255, 8) = %v, %v", v, err)
	}
	if _, err := ParseUint("256", 8); err == nil {
		t.Error("ParseUint(256, 8) expected range error")
	}
	if _, err := ParseUint("-1", 32); err == nil {
		t.Error("ParseUint(-1, 32) expected error")
	}
}
