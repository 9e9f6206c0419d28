package pipeline

import (
	"path/filepath"
	"strings"
)

// OutputPath inserts suffix between the input's stem and extension:
// "dir/photo.png" with "Invert" becomes "dir/photoInvert.png".
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

// DeriveOutputPath is OutputPath with an optional forced extension,
// which is appended to the input path before the suffix is inserted.
func DeriveOutputPath(input, suffix, forcedExt string) string {
	if forcedExt != "" {
		input += forcedExt
	}
	return OutputPath(input, suffix)
}
