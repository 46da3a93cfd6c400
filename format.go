package rgb565

import (
	"path/filepath"
	"strings"
)

// Extension is appended to the input filename to name the converted
// output.
const Extension = ".raw"

// Extension-only classification; a renamed corrupt file passes this
// check and fails later at decode time.
var validExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".tiff": {},
	".webp": {},
}

// IsSupported reports whether path names a supported input image type,
// matched case-insensitively on its extension. It never opens the file.
func IsSupported(path string) bool {
	if path == "" {
		return false
	}
	_, ok := validExts[strings.ToLower(filepath.Ext(path))]
	return ok
}
