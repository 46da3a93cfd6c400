package raw

import (
	"bufio"
	"encoding/binary"
	"image"
	"io"
)

// Codec converts pixels to packed words for one Format. The zero value
// is not usable; construct with NewCodec. A Codec holds no mutable
// state and is safe for concurrent use.
type Codec struct {
	f Format
}

// NewCodec returns a Codec for the given packed pixel layout.
func NewCodec(f Format) Codec {
	return Codec{f: f}
}

// Word packs a single pixel into its 16-bit representation, truncating
// each component to the top bits its channel keeps.
func (c Codec) Word(p Pixel) (uint16, error) {
	if p.R < 0 || p.R > 255 || p.G < 0 || p.G > 255 || p.B < 0 || p.B > 255 {
		return 0, ErrPixelRange
	}

	r := uint16(p.R) >> (depth - c.f.RBits) & c.f.rmask()
	g := uint16(p.G) >> (depth - c.f.GBits) & c.f.gmask()
	b := uint16(p.B) >> (depth - c.f.BBits) & c.f.bmask()

	return r<<c.f.RShift | g<<c.f.GShift | b<<c.f.BShift, nil
}

// Encode writes the image to w as consecutive big-endian words in
// raster order. It validates the pixel count against the dimensions
// before writing anything.
func (c Codec) Encode(w io.Writer, m *Image) error {
	if len(m.Pixels) == 0 {
		return ErrEmptyImage
	}
	if len(m.Pixels) != m.Width*m.Height {
		return ErrPixelCount
	}

	bw := bufio.NewWriter(w)

	var tmp [WordSize]byte
	for _, p := range m.Pixels {
		v, err := c.Word(p)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint16(tmp[:], v)
		if _, err := bw.Write(tmp[:]); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Encode writes the image m to w in RGB565 raw format.
func Encode(w io.Writer, m *Image) error {
	return NewCodec(RGB565).Encode(w, m)
}

// FromImage flattens a decoded image into raster-order pixels, dropping
// any alpha channel.
func FromImage(m image.Image) *Image {
	b := m.Bounds()
	out := &Image{
		Pixels: make([]Pixel, 0, b.Dx()*b.Dy()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b, _ := m.At(x, y).RGBA()
			out.Pixels = append(out.Pixels, Pixel{
				R: int(r >> 8),
				G: int(g >> 8),
				B: int(b >> 8),
			})
		}
	}

	return out
}
