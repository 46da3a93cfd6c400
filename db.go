package rgb565

import (
	"database/sql"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Manifest records successful conversions keyed by the CRC of the input
// file, so repeat batch runs can skip inputs that have not changed.
type Manifest struct {
	db *sql.DB
}

// OpenManifest opens or creates a manifest database at file.
func OpenManifest(file string) (*Manifest, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, crc TEXT NOT NULL UNIQUE, input TEXT NOT NULL, output TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, pixels INTEGER NOT NULL)"); err != nil {
		return nil, err
	}

	return &Manifest{
		db: db,
	}, nil
}

func (m *Manifest) Close() error {
	return m.db.Close()
}

// Seen reports whether a conversion for this checksum was already
// recorded with the same output path and that output still exists on
// disk. A match at a different output path forces a reconversion.
func (m *Manifest) Seen(crc, output string) (bool, error) {
	var recorded string
	switch err := m.db.QueryRow("SELECT output FROM conversion WHERE crc = ?", crc).Scan(&recorded); err {
	case sql.ErrNoRows:
		return false, nil
	case nil:
		if recorded != output {
			return false, nil
		}
		if _, err := os.Stat(output); err != nil {
			return false, nil
		}
		return true, nil
	default:
		return false, err
	}
}

// Record stores a successful conversion result under the given input
// checksum, replacing any previous entry for it.
func (m *Manifest) Record(crc string, r Result) error {
	if _, err := m.db.Exec("INSERT OR REPLACE INTO conversion (crc, input, output, width, height, pixels) VALUES (?, ?, ?, ?, ?, ?)", crc, r.Input, r.Output, r.Width, r.Height, r.PixelCount); err != nil {
		return err
	}
	return nil
}

func crcFile(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%08X", h.Sum32()), nil
}
