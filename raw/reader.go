package raw

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// expand widens an n-bit component back to 8 bits, replicating the top
// bits into the low end so full intensity maps back to 0xff.
func expand(v uint16, bits uint) int {
	return int(v<<(depth-bits) | v>>(2*bits-depth))
}

// Unword unpacks a 16-bit word back into an 8-bit pixel. The result is
// quantized; red and blue are exact to within 8 and green to within 4
// of the component originally encoded.
func (c Codec) Unword(v uint16) Pixel {
	return Pixel{
		R: expand(v>>c.f.RShift&c.f.rmask(), c.f.RBits),
		G: expand(v>>c.f.GShift&c.f.gmask(), c.f.GBits),
		B: expand(v>>c.f.BShift&c.f.bmask(), c.f.BBits),
	}
}

// Decode reads exactly width * height words from r. The format is
// headerless so the dimensions must be supplied by the caller; trailing
// data beyond them is an error.
func (c Codec) Decode(r io.Reader, width, height int) (*Image, error) {
	if width < 1 || height < 1 {
		return nil, ErrEmptyImage
	}

	m := &Image{
		Pixels: make([]Pixel, 0, width*height),
		Width:  width,
		Height: height,
	}

	var tmp [WordSize]byte
	for i := 0; i < width*height; i++ {
		if err := readFull(r, tmp[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				return nil, errNotEnough
			}
			return nil, err
		}
		m.Pixels = append(m.Pixels, c.Unword(binary.BigEndian.Uint16(tmp[:])))
	}

	switch _, err := io.ReadFull(r, tmp[:1]); err {
	case io.EOF:
	case nil:
		return nil, errTooMuch
	default:
		return nil, err
	}

	return m, nil
}

// Decode reads an RGB565 raw image of the given dimensions from r.
func Decode(r io.Reader, width, height int) (*Image, error) {
	return NewCodec(RGB565).Decode(r, width, height)
}

// ToImage converts the pixel sequence back into a stdlib image, for
// previewing raw files on the host.
func (m *Image) ToImage() image.Image {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i, p := range m.Pixels {
		out.SetRGBA(i%m.Width, i/m.Width, color.RGBA{
			R: uint8(p.R),
			G: uint8(p.G),
			B: uint8(p.B),
			A: 0xff,
		})
	}
	return out
}
