/*
Package raw implements an encoder and decoder for the headerless RGB565
raw image format consumed by small SPI displays such as the ILI9341.

A file is width * height consecutive 16-bit words in raster order, one
per pixel, each written big-endian. There is no header, footer or
metadata so the file size is always exactly width * height * 2 bytes and
the dimensions must be carried out of band.

Each word packs a color as [r:5][g:6][b:5] from most- to least-significant
bit. The byte order is a contract with the display firmware and must not
change.
*/
package raw

import "errors"

const (
	// WordSize is the number of bytes used per encoded pixel.
	WordSize = 2

	depth = 8
)

var (
	// ErrEmptyImage is returned when an image contains no pixels.
	ErrEmptyImage = errors.New("raw: image has no pixels")

	// ErrPixelCount is returned when the number of pixels does not
	// match the stated dimensions.
	ErrPixelCount = errors.New("raw: pixel count does not match dimensions")

	// ErrPixelRange is returned when a pixel component is outside 0-255.
	ErrPixelRange = errors.New("raw: pixel component out of range")

	errNotEnough = errors.New("raw: not enough image data")
	errTooMuch   = errors.New("raw: too much image data")
)

// Pixel is one 8-bit RGB triplet in decoder order. Components are typed
// int rather than uint8 so that out of range values survive long enough
// to be rejected by the codec.
type Pixel struct {
	R, G, B int
}

// Image is an ordered pixel sequence in raster order, top-to-bottom and
// left-to-right, together with its dimensions.
type Image struct {
	Pixels []Pixel
	Width  int
	Height int
}

// Format describes a packed pixel layout as bit widths and shifts per
// component. A Format value is immutable once constructed; there is no
// package-level mutable configuration.
type Format struct {
	RBits, GBits, BBits    uint
	RShift, GShift, BShift uint
}

// RGB565 is the 5/6/5 layout used by ILI9341-class display controllers.
var RGB565 = Format{
	RBits: 5, GBits: 6, BBits: 5,
	RShift: 11, GShift: 5, BShift: 0,
}

func (f Format) rmask() uint16 { return 1<<f.RBits - 1 }
func (f Format) gmask() uint16 { return 1<<f.GBits - 1 }
func (f Format) bmask() uint16 { return 1<<f.BBits - 1 }

// FileSize returns the exact encoded size in bytes of an image with the
// given dimensions.
func FileSize(width, height int) int64 {
	return int64(width) * int64(height) * WordSize
}
