package rgb565

import (
	"os"

	"github.com/petframe/rgb565/raw"
)

// Task is one unit of conversion work: a validated input, a resolved
// output path and whether an existing output may be replaced without
// consulting the overwrite decision.
type Task struct {
	Input     string
	Output    string
	Overwrite bool
}

// Status is the outcome class of one task.
type Status int

const (
	Converted Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Converted:
		return "converted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Result records the outcome of one task. On success it carries the
// output path, dimensions and pixel count; on failure the classified
// error; on a skip the reason the write was declined.
type Result struct {
	Status     Status
	Input      string
	Output     string
	Width      int
	Height     int
	PixelCount int
	Err        *Error
}

func failure(t Task, kind Kind, err error) Result {
	return Result{
		Status: Failed,
		Input:  t.Input,
		Output: t.Output,
		Err:    newError(kind, t.Input, err),
	}
}

// encodeKind maps codec errors onto failure kinds; anything the codec
// does not recognize came from the writer.
func encodeKind(err error) Kind {
	switch err {
	case raw.ErrEmptyImage, raw.ErrPixelCount:
		return MalformedImage
	case raw.ErrPixelRange:
		return InvalidPixel
	}
	return IOError
}

// Convert encodes one decoded image to the task's output path. The
// destination handle is released on every exit path and a partially
// written file is removed, best-effort, before a failure is returned.
func (c *Converter) Convert(t Task, m *raw.Image) Result {
	if len(m.Pixels) == 0 {
		return failure(t, MalformedImage, raw.ErrEmptyImage)
	}
	if len(m.Pixels) != m.Width*m.Height {
		return failure(t, MalformedImage, raw.ErrPixelCount)
	}

	if _, err := os.Stat(t.Output); err == nil {
		if !t.Overwrite && !c.decide.Overwrite(t.Output) {
			c.logger.Printf("skipping %s (output file exists)", t.Input)
			return Result{
				Status: Skipped,
				Input:  t.Input,
				Output: t.Output,
				Err:    newError(OutputExists, t.Output, nil),
			}
		}
	}

	f, err := os.Create(t.Output)
	if err != nil {
		return failure(t, IOError, err)
	}

	err = c.codec.Encode(f, m)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := os.Remove(t.Output); rerr != nil {
			c.logger.Printf("could not remove partial output %s: %v", t.Output, rerr)
		}
		return failure(t, encodeKind(err), err)
	}

	c.logger.Printf("converted %s -> %s (%dx%d, %d pixels)", t.Input, t.Output, m.Width, m.Height, len(m.Pixels))

	return Result{
		Status:     Converted,
		Input:      t.Input,
		Output:     t.Output,
		Width:      m.Width,
		Height:     m.Height,
		PixelCount: len(m.Pixels),
	}
}
