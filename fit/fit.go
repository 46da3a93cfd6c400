/*
Package fit scales images to a target width while preserving aspect
ratio, sized to suit a small display panel. The resampling itself is
delegated to github.com/nfnt/resize.
*/
package fit

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/nfnt/resize"
)

var errBadWidth = errors.New("fit: width must be a positive integer")

// Width scales m to the given width, deriving the height from the
// source aspect ratio, using Lanczos resampling.
func Width(m image.Image, width int) (image.Image, error) {
	if width < 1 {
		return nil, errBadWidth
	}
	return resize.Resize(uint(width), 0, m, resize.Lanczos3), nil
}

// OutputName returns the conventional name for a resized copy of path:
// the original basename prefixed with the target width.
func OutputName(path string, width int) string {
	return filepath.Join(filepath.Dir(path), fmt.Sprintf("%d_%s", width, filepath.Base(path)))
}
