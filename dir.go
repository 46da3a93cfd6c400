package rgb565

import (
	"errors"
	"os"
	"path/filepath"
)

const probeName = ".write_test"

var errNotDirectory = errors.New("not a directory")

// EnsureDirectory resolves dir, creates it (and any parents) if absent
// and verifies it is writable with a create-and-delete marker file. It
// runs once per batch; any failure here is fatal for the whole run.
func (c *Converter) EnsureDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", newError(DirectoryError, dir, err)
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(abs, 0755); err != nil {
			return "", newError(DirectoryError, abs, err)
		}
	case err != nil:
		return "", newError(DirectoryError, abs, err)
	case !info.IsDir():
		return "", newError(DirectoryError, abs, errNotDirectory)
	}

	marker := filepath.Join(abs, probeName)
	f, err := os.Create(marker)
	if err != nil {
		return "", newError(DirectoryError, abs, err)
	}
	f.Close()
	if err := os.Remove(marker); err != nil {
		c.logger.Printf("could not remove write marker %s: %v", marker, err)
	}

	return abs, nil
}
