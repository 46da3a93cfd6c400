package rgb565

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// RunOptions configures one batch run.
type RunOptions struct {
	// OutputDir, when set, receives every output file instead of
	// colocating each with its input. It is validated once, before
	// any conversion starts.
	OutputDir string

	// OutputName names the output file explicitly. Only valid when
	// converting a single input.
	OutputName string

	// Overwrite replaces existing output files without consulting
	// the overwrite decision.
	Overwrite bool

	// Workers caps concurrent conversions. Zero or less means one.
	Workers int

	// Sizes writes a width:height sidecar next to each output for
	// display firmware that cannot know the dimensions otherwise.
	Sizes bool

	// Manifest, when set, records successful conversions and lets
	// repeat runs skip inputs whose checksum has not changed.
	Manifest *Manifest

	// Progress, when set, is called once per completed task. Calls
	// are serialized and arrive in completion order.
	Progress func(Result)
}

// Summary is the terminal output of a batch run; Results holds one
// entry per input in input order regardless of completion order.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
	Results   []Result
}

// Failures returns the failed results in input order.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Status == Failed {
			out = append(out, r)
		}
	}
	return out
}

var errExplicitName = errors.New("explicit output filename requires exactly one input")

type indexed struct {
	index  int
	result Result
}

// Run converts inputs in three phases: validate every input up front,
// prepare the output directory, then convert each valid input with
// per-file failure isolation. A failure on one input never halts its
// siblings; only a directory failure or an empty valid set aborts the
// run, and both do so before anything is written. Cancelling ctx stops
// scheduling new tasks but never interrupts an in-flight write.
func (c *Converter) Run(ctx context.Context, inputs []string, opts RunOptions) (*Summary, error) {
	if opts.OutputName != "" && len(inputs) != 1 {
		return nil, errExplicitName
	}

	results := make([]Result, len(inputs))
	var valid []int
	for i, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			results[i] = Result{Status: Failed, Input: input, Err: newError(InputNotFound, input, err)}
			continue
		}
		if !IsSupported(input) {
			results[i] = Result{Status: Failed, Input: input, Err: newError(UnsupportedFormat, input, nil)}
			continue
		}
		valid = append(valid, i)
	}

	if len(valid) == 0 {
		return nil, newError(NoValidInputs, "", fmt.Errorf("%d inputs, none usable", len(inputs)))
	}

	var dir string
	if opts.OutputDir != "" {
		var err error
		if dir, err = c.EnsureDirectory(opts.OutputDir); err != nil {
			return nil, err
		}
	}

	// Two inputs can resolve to the same output file, e.g. equal
	// basenames funnelled into one output directory. Writes to one
	// path must never interleave, so the first input claims the path
	// and later ones fail before anything is scheduled.
	resolved := make([]string, len(inputs))
	claimed := make(map[string]string, len(valid))
	scheduled := make([]int, 0, len(valid))
	for _, i := range valid {
		out := OutputPath(inputs[i], dir, opts.OutputName)
		if prev, ok := claimed[out]; ok {
			results[i] = Result{
				Status: Failed,
				Input:  inputs[i],
				Output: out,
				Err:    newError(IOError, inputs[i], fmt.Errorf("output %s already claimed by %s", out, prev)),
			}
			continue
		}
		claimed[out] = inputs[i]
		resolved[i] = out
		scheduled = append(scheduled, i)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(scheduled) {
		workers = len(scheduled)
	}

	jobs := make(chan int)
	out := make(chan indexed)

	go func() {
		defer close(jobs)
		for _, i := range scheduled {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				out <- indexed{i, c.runTask(inputs[i], resolved[i], opts)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	done := make(map[int]struct{})
	for r := range out {
		results[r.index] = r.result
		done[r.index] = struct{}{}
		if opts.Progress != nil {
			opts.Progress(r.result)
		}
	}

	// Anything cancellation kept off the schedule is a skip.
	for _, i := range scheduled {
		if _, ok := done[i]; !ok {
			results[i] = Result{Status: Skipped, Input: inputs[i]}
		}
	}

	summary := &Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case Converted:
			summary.Converted++
		case Skipped:
			summary.Skipped++
		case Failed:
			summary.Failed++
		}
	}

	c.logger.Printf("conversion complete: %d converted, %d skipped, %d failed", summary.Converted, summary.Skipped, summary.Failed)

	return summary, nil
}

func (c *Converter) runTask(input, output string, opts RunOptions) Result {
	t := Task{
		Input:     input,
		Output:    output,
		Overwrite: opts.Overwrite,
	}

	var crc string
	if opts.Manifest != nil {
		var err error
		if crc, err = crcFile(input); err != nil {
			return failure(t, IOError, err)
		}
		if seen, err := opts.Manifest.Seen(crc, t.Output); err != nil {
			return failure(t, IOError, err)
		} else if seen {
			c.logger.Printf("skipping %s (unchanged since last run)", input)
			return Result{Status: Skipped, Input: input, Output: t.Output}
		}
	}

	m, err := c.decoder.Decode(input)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(t, InputNotFound, err)
		}
		return failure(t, DecodeError, err)
	}

	r := c.Convert(t, m)
	if r.Status != Converted {
		return r
	}

	if opts.Sizes {
		if err := writeSizeFile(t.Output, m.Width, m.Height); err != nil {
			c.logger.Printf("could not write size sidecar for %s: %v", t.Output, err)
		}
	}

	if opts.Manifest != nil {
		if err := opts.Manifest.Record(crc, r); err != nil {
			c.logger.Printf("could not record %s in manifest: %v", input, err)
		}
	}

	return r
}

// writeSizeFile drops a width:height file next to the output, the form
// the display firmware fetches to learn the raw image's dimensions.
func writeSizeFile(output string, width, height int) error {
	f, err := os.Create(output + ".size.txt")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(f, "%d:%d", width, height)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
