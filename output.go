package rgb565

import (
	"path/filepath"
	"sync"
)

// OutputPath resolves where the converted file for input should be
// written. By default the output is the input filename plus the raw
// extension, colocated with the input; dir overrides the placement and
// name overrides the filename.
func OutputPath(input, dir, name string) string {
	if name == "" {
		name = filepath.Base(input) + Extension
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}

// OverwriteDecision is consulted when an output path already exists and
// the task does not carry an explicit overwrite flag.
type OverwriteDecision interface {
	Overwrite(path string) bool
}

type always struct{}

func (always) Overwrite(string) bool { return true }

type never struct{}

func (never) Overwrite(string) bool { return false }

// AlwaysOverwrite replaces existing output files without asking.
var AlwaysOverwrite OverwriteDecision = always{}

// NeverOverwrite treats every existing output file as an answer of no,
// suitable for non-interactive runs.
var NeverOverwrite OverwriteDecision = never{}

// Ask defers the decision to a prompt function, typically a blocking
// console read. Prompts are serialized so concurrent tasks never issue
// more than one at a time.
type Ask struct {
	Prompt func(path string) bool

	mu sync.Mutex
}

func (a *Ask) Overwrite(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Prompt(path)
}
