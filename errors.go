package rgb565

import "fmt"

// Kind classifies a conversion failure. Per-file kinds are attached to
// that file's Result and never abort sibling tasks; DirectoryError and
// NoValidInputs are batch-level and fatal.
type Kind int

const (
	UnsupportedFormat Kind = iota + 1
	InputNotFound
	DecodeError
	MalformedImage
	InvalidPixel
	OutputExists
	DirectoryError
	IOError
	NoValidInputs
)

var kindNames = map[Kind]string{
	UnsupportedFormat: "unsupported format",
	InputNotFound:     "input not found",
	DecodeError:       "decode error",
	MalformedImage:    "malformed image",
	InvalidPixel:      "invalid pixel",
	OutputExists:      "output exists",
	DirectoryError:    "directory error",
	IOError:           "i/o error",
	NoValidInputs:     "no valid inputs",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure tied to the path it occurred on.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}
