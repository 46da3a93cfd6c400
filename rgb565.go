/*
Package rgb565 converts bitmap images into the headerless big-endian
RGB565 raw files consumed by small embedded displays, one file at a time
or in validated batches with per-file failure isolation.
*/
package rgb565

import (
	"image"
	"io/ioutil"
	"log"
	"os"

	"github.com/petframe/rgb565/raw"
)

// Decoder produces the ordered pixel sequence for an input file. The
// stock implementation wraps the stdlib image registry; tests and
// callers with their own decode path supply something else.
type Decoder interface {
	Decode(path string) (*raw.Image, error)
}

// StdDecoder decodes through image.Decode. Format drivers are whatever
// the caller has registered with blank imports.
type StdDecoder struct{}

func (StdDecoder) Decode(path string) (*raw.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	return raw.FromImage(m), nil
}

// Converter drives image to RGB565 conversion.
type Converter struct {
	codec   raw.Codec
	decoder Decoder
	decide  OverwriteDecision
	logger  *log.Logger
}

// New returns a Converter using the given decoder and overwrite policy.
// A nil decoder falls back to the stdlib image registry, a nil decision
// to never overwriting and a nil logger to discarding.
func New(decoder Decoder, decide OverwriteDecision, logger *log.Logger) *Converter {
	if decoder == nil {
		decoder = StdDecoder{}
	}
	if decide == nil {
		decide = NeverOverwrite
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Converter{
		codec:   raw.NewCodec(raw.RGB565),
		decoder: decoder,
		decide:  decide,
		logger:  logger,
	}
}
