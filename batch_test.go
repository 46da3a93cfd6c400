package rgb565

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/petframe/rgb565/raw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pathDecoder struct {
	images map[string]*raw.Image
}

func (d pathDecoder) Decode(path string) (*raw.Image, error) {
	return d.images[path], nil
}

type fakeDecoder struct {
	fail  map[string]error
	calls int32
}

func (d *fakeDecoder) Decode(path string) (*raw.Image, error) {
	atomic.AddInt32(&d.calls, 1)
	if err, ok := d.fail[filepath.Base(path)]; ok {
		return nil, err
	}
	return solidImage(2, 2, raw.Pixel{R: 10, G: 20, B: 30}), nil
}

// touch creates empty input files; the fake decoder never reads them
// but batch validation stats them.
func touch(t *testing.T, dir string, names ...string) []string {
	var paths []string
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(p, []byte(name), 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestRunIsolatesFailures(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png", "c.png")
	dec := &fakeDecoder{fail: map[string]error{"b.png": errors.New("corrupt")}}

	c := New(dec, NeverOverwrite, nil)
	summary, err := c.Run(context.Background(), inputs, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	// Input order is preserved regardless of outcome.
	require.Len(t, summary.Results, 3)
	assert.Equal(t, Converted, summary.Results[0].Status)
	assert.Equal(t, Failed, summary.Results[1].Status)
	assert.Equal(t, Converted, summary.Results[2].Status)
	assert.Equal(t, DecodeError, summary.Results[1].Err.Kind)

	// The third input was still processed.
	_, err = os.Stat(inputs[2] + Extension)
	assert.NoError(t, err)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, inputs[1], failures[0].Input)
}

func TestRunValidatesUpFront(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "notes.txt")
	inputs = append(inputs, filepath.Join(dir, "missing.png"), filepath.Join(dir, "missing.txt"))

	dec := &fakeDecoder{}
	c := New(dec, NeverOverwrite, nil)

	summary, err := c.Run(context.Background(), inputs, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, UnsupportedFormat, summary.Results[1].Err.Kind)
	assert.Equal(t, InputNotFound, summary.Results[2].Err.Kind)

	// A path that does not exist is reported as missing even when its
	// extension would also have failed the format gate.
	assert.Equal(t, InputNotFound, summary.Results[3].Err.Kind)

	// Only the valid input reached the decoder.
	assert.Equal(t, int32(1), atomic.LoadInt32(&dec.calls))
}

func TestRunNoValidInputs(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.txt")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	_, err := c.Run(context.Background(), inputs, RunOptions{})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, NoValidInputs, cerr.Kind)
}

func TestRunDirectoryFailureIsFatal(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, ioutil.WriteFile(blocker, []byte("x"), 0644))

	dec := &fakeDecoder{}
	c := New(dec, NeverOverwrite, nil)

	_, err := c.Run(context.Background(), inputs, RunOptions{OutputDir: blocker})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, DirectoryError, cerr.Kind)

	// Nothing was decoded or written.
	assert.Zero(t, atomic.LoadInt32(&dec.calls))
	_, err = os.Stat(inputs[0] + Extension)
	assert.True(t, os.IsNotExist(err))
}

func TestRunOutputDirectory(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png")
	outdir := filepath.Join(dir, "out")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	summary, err := c.Run(context.Background(), inputs, RunOptions{OutputDir: outdir})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Converted)

	_, err = os.Stat(filepath.Join(outdir, "a.png"+Extension))
	assert.NoError(t, err)
}

func TestRunExplicitOutputName(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	summary, err := c.Run(context.Background(), inputs, RunOptions{
		OutputDir:  dir,
		OutputName: "display.raw",
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Converted)

	_, err = os.Stat(filepath.Join(dir, "display.raw"))
	assert.NoError(t, err)
}

func TestRunExplicitNameNeedsSingleInput(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	_, err := c.Run(context.Background(), inputs, RunOptions{OutputName: "display.raw"})
	assert.Equal(t, errExplicitName, err)
}

func TestRunDuplicateOutputsSingleWriter(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0755))
	inputs := []string{
		filepath.Join(dir, "a", "photo.png"),
		filepath.Join(dir, "b", "photo.png"),
	}
	for _, p := range inputs {
		require.NoError(t, ioutil.WriteFile(p, []byte(p), 0644))
	}

	red := solidImage(8, 8, raw.Pixel{R: 255, G: 0, B: 0})
	blue := solidImage(8, 8, raw.Pixel{R: 0, G: 0, B: 255})
	dec := pathDecoder{images: map[string]*raw.Image{
		inputs[0]: red,
		inputs[1]: blue,
	}}

	outdir := filepath.Join(dir, "out")
	c := New(dec, NeverOverwrite, nil)
	summary, err := c.Run(context.Background(), inputs, RunOptions{
		OutputDir: outdir,
		Overwrite: true,
		Workers:   2,
	})
	require.NoError(t, err)

	// Both inputs resolve to out/photo.png.raw; only the first may
	// write it, the second fails instead of interleaving with it.
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, Converted, summary.Results[0].Status)
	require.Equal(t, Failed, summary.Results[1].Status)
	require.NotNil(t, summary.Results[1].Err)
	assert.Equal(t, IOError, summary.Results[1].Err.Kind)

	// The file on disk is exactly the first input's encoding, with
	// no words from the second mixed in.
	want := new(bytes.Buffer)
	require.NoError(t, raw.Encode(want, red))
	got, err := ioutil.ReadFile(filepath.Join(outdir, "photo.png"+Extension))
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)
}

func TestRunWorkersPreserveOrder(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png", "c.png", "d.png", "e.png")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	summary, err := c.Run(context.Background(), inputs, RunOptions{Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Converted)
	require.Len(t, summary.Results, 5)
	for i, r := range summary.Results {
		assert.Equal(t, inputs[i], r.Input)
	}
}

func TestRunProgress(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png", "c.png")

	var events int
	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	_, err := c.Run(context.Background(), inputs, RunOptions{
		Progress: func(Result) { events++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 3, events)
}

func TestRunSizesSidecar(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png")

	c := New(&fakeDecoder{}, NeverOverwrite, nil)
	_, err := c.Run(context.Background(), inputs, RunOptions{Sizes: true})
	require.NoError(t, err)

	b, err := ioutil.ReadFile(inputs[0] + Extension + ".size.txt")
	require.NoError(t, err)
	assert.Equal(t, "2:2", string(b))
}

func TestRunManifestSkipsUnchanged(t *testing.T) {
	dir, done := tempDir(t)
	defer done()

	inputs := touch(t, dir, "a.png", "b.png")

	m, err := OpenManifest(filepath.Join(dir, "manifest.db"))
	require.NoError(t, err)
	defer m.Close()

	c := New(&fakeDecoder{}, NeverOverwrite, nil)

	summary, err := c.Run(context.Background(), inputs, RunOptions{Manifest: m, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Converted)

	summary, err = c.Run(context.Background(), inputs, RunOptions{Manifest: m, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Converted)
	assert.Equal(t, 2, summary.Skipped)
}
