/*
Package feed extracts photo download queues from an animal-shelter JSON
feed, producing the name:url lines the fetch side of the toolset works
through.
*/
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Courtesy posts are listings on behalf of another shelter; they carry
// the marker in the record name and are dropped before any sanitization.
const courtesyMarker = "Courtesy"

// Entry is one resolved record: a filesystem-safe name and the photo
// URL to fetch for it.
type Entry struct {
	Name string
	URL  string
}

type animal struct {
	Name   string              `json:"name"`
	Photos []map[string]string `json:"photos"`
}

type document struct {
	Animals []animal `json:"animals"`
}

// SanitizeName makes a record name safe to use as a filename: spaces
// are removed and parentheses become underscores.
func SanitizeName(name string) string {
	r := strings.NewReplacer(" ", "", "(", "_", ")", "_")
	return r.Replace(name)
}

// Extract reads a feed document from r and returns one entry per record
// that has a photo at the requested size, plus the names of records
// that were skipped for having none. There is no default size; which
// resolution to prefer is the caller's policy.
func Extract(r io.Reader, size string) ([]Entry, []string, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, err
	}

	var (
		entries []Entry
		skipped []string
	)
	for _, a := range doc.Animals {
		if strings.Contains(a.Name, courtesyMarker) {
			continue
		}
		if len(a.Photos) == 0 || a.Photos[0][size] == "" {
			skipped = append(skipped, a.Name)
			continue
		}
		entries = append(entries, Entry{
			Name: SanitizeName(a.Name),
			URL:  a.Photos[0][size],
		})
	}

	return entries, skipped, nil
}

// WriteQueue writes entries to w as name:url lines.
func WriteQueue(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s:%s\n", e.Name, e.URL); err != nil {
			return err
		}
	}
	return nil
}
