package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/petframe/rgb565"
	"github.com/petframe/rgb565/feed"
	"github.com/petframe/rgb565/fit"
	"github.com/petframe/rgb565/raw"
	"github.com/urfave/cli/v2"
)

const defaultQueue = "pets.wget.queue.txt"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func promptOverwrite(path string) bool {
	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("File '%s' exists. Overwrite? (y/n): ", path)
		line, err := in.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Println("Please enter 'y' or 'n'")
		}
	}
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

func encodeFile(path string, m image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, m, nil)
	case ".png":
		return png.Encode(f, m)
	}
	return errors.New("can only write png or jpeg output")
}

func convertAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	var decide rgb565.OverwriteDecision = &rgb565.Ask{Prompt: promptOverwrite}
	if c.Bool("non-interactive") {
		decide = rgb565.NeverOverwrite
	}

	conv := rgb565.New(nil, decide, logger)

	opts := rgb565.RunOptions{
		OutputDir:  c.String("outdir"),
		OutputName: c.String("output"),
		Overwrite:  c.Bool("overwrite"),
		Workers:    c.Int("jobs"),
		Sizes:      c.Bool("sizes"),
	}

	if file := c.String("manifest"); file != "" {
		m, err := rgb565.OpenManifest(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer m.Close()
		opts.Manifest = m
	}

	summary, err := conv.Run(context.Background(), c.Args().Slice(), opts)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Printf("%d converted, %d skipped, %d failed\n", summary.Converted, summary.Skipped, summary.Failed)
	for _, r := range summary.Failures() {
		fmt.Fprintf(os.Stderr, "%v\n", r.Err)
	}

	if summary.Failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d conversions failed", summary.Failed), 1)
	}

	return nil
}

func resizeAction(c *cli.Context) error {
	if c.NArg() != 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	file := c.Args().Get(0)
	width, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || width < 1 {
		return cli.NewExitError("WIDTH must be a positive integer", 1)
	}

	m, err := decodeFile(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	logger.Printf("original dimensions: %d x %d", m.Bounds().Dx(), m.Bounds().Dy())

	out, err := fit.Width(m, width)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	name := fit.OutputName(file, width)
	if err := encodeFile(name, out); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Printf("resized image saved as: %s (%d x %d)\n", name, out.Bounds().Dx(), out.Bounds().Dy())

	return nil
}

func previewAction(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	file := c.Args().First()
	width, height := c.Int("width"), c.Int("height")
	if width < 1 || height < 1 {
		return cli.NewExitError("--width and --height are required", 1)
	}

	f, err := os.Open(file)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	m, err := raw.Decode(f, width, height)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	name := c.String("output")
	if name == "" {
		name = file + ".png"
	}

	if err := encodeFile(name, m.ToImage()); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Printf("preview saved as: %s\n", name)

	return nil
}

func extractAction(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	entries, skipped, err := feed.Extract(f, c.String("size"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, name := range skipped {
		logger.Printf("%s has no photos", name)
	}

	q, err := os.Create(c.String("queue"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer q.Close()

	if err := feed.WriteQueue(q, entries); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Printf("%d entries queued, %d records without photos\n", len(entries), len(skipped))

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "rgb565"
	app.Usage = "convert images to raw RGB565 files for embedded displays"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert one or more images to RGB565 raw files",
			ArgsUsage: "FILE [FILE...]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "outdir",
					Usage: "output directory (default: same as each input)",
				},
				&cli.StringFlag{
					Name:  "output",
					Usage: "explicit output filename, single input only",
				},
				&cli.BoolFlag{
					Name:  "overwrite",
					Usage: "overwrite existing output files without prompting",
				},
				&cli.BoolFlag{
					Name:  "non-interactive",
					Usage: "never prompt; existing outputs are skipped unless --overwrite",
				},
				&cli.IntFlag{
					Name:  "jobs",
					Value: 1,
					Usage: "number of concurrent conversions",
				},
				&cli.StringFlag{
					Name:  "manifest",
					Usage: "track conversions in a database and skip unchanged inputs",
				},
				&cli.BoolFlag{
					Name:  "sizes",
					Usage: "write a width:height sidecar next to each output",
				},
			},
			Action: convertAction,
		},
		{
			Name:      "resize",
			Usage:     "Resize an image to a target width preserving aspect ratio",
			ArgsUsage: "FILE WIDTH",
			Action:    resizeAction,
		},
		{
			Name:      "preview",
			Usage:     "Render an RGB565 raw file back to PNG",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "width",
					Usage: "raw image width in pixels",
				},
				&cli.IntFlag{
					Name:  "height",
					Usage: "raw image height in pixels",
				},
				&cli.StringFlag{
					Name:  "output",
					Usage: "output filename (default: FILE.png)",
				},
			},
			Action: previewAction,
		},
		{
			Name:      "extract",
			Usage:     "Extract a photo download queue from a shelter JSON feed",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "size",
					Value: "medium",
					Usage: "photo resolution to prefer",
				},
				&cli.StringFlag{
					Name:  "queue",
					Value: defaultQueue,
					Usage: "queue file to write",
				},
			},
			Action: extractAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
