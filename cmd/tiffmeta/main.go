// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Command tiffmeta prints the metadata directories of one or more image files.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bep/tiffmeta"
	"golang.org/x/sync/errgroup"
)

type config struct {
	format  tiffmeta.ImageFormat
	sources tiffmeta.TagSource
	verbose bool
	mmap    bool
	jobs    int
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("tiffmeta: ")

	var (
		format  = flag.String("format", "", "image format (jpeg, tiff, png, webp, heif, avif); detected from the file if not set")
		sources = flag.String("sources", "exif,iptc,xmp,icc", "comma separated list of metadata sources (exif, iptc, xmp, icc, config)")
		verbose = flag.Bool("v", false, "log decoder warnings to stderr")
		useMmap = flag.Bool("mmap", false, "memory map the files (unix only)")
		jobs    = flag.Int("j", runtime.NumCPU(), "number of files to decode concurrently")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: tiffmeta [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config{verbose: *verbose, mmap: *useMmap, jobs: *jobs}
	if *format != "" {
		f, ok := tiffmeta.ImageFormatFromExtension(*format)
		if !ok {
			log.Fatalf("unknown image format %q", *format)
		}
		cfg.format = f
	}
	s, err := tiffmeta.ParseTagSources(*sources)
	if err != nil {
		log.Fatal(err)
	}
	cfg.sources = s

	if err := run(context.Background(), cfg, flag.Args(), os.Stdout); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

// run decodes the files concurrently and writes the output in argument order.
// It returns an error if any of the files could not be opened.
func run(ctx context.Context, cfg config, filenames []string, w io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	if cfg.jobs > 0 {
		g.SetLimit(cfg.jobs)
	}

	results := make([]bytes.Buffer, len(filenames))
	openFailed := make([]bool, len(filenames))

	for i, filename := range filenames {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := decodeFile(cfg, filename, &results[i]); err != nil {
				fmt.Fprintf(&results[i], "%s: %v\n", filename, err)
				openFailed[i] = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	var failed int
	for i := range results {
		if _, err := results[i].WriteTo(w); err != nil {
			return err
		}
		if openFailed[i] {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be opened", failed, len(filenames))
	}
	return nil
}

// decodeFile decodes filename and writes its directories to w.
// Only failures to open the file are returned.
func decodeFile(cfg config, filename string, w io.Writer) error {
	r, data, closer, err := openFile(filename, cfg.mmap)
	if err != nil {
		return err
	}
	defer closer()

	opts := tiffmeta.Options{
		R:           r,
		Data:        data,
		ImageFormat: cfg.format,
		Sources:     cfg.sources,
	}
	if opts.ImageFormat == tiffmeta.ImageFormatAuto {
		if f, ok := tiffmeta.ImageFormatFromExtension(filepath.Ext(filename)); ok {
			opts.ImageFormat = f
		}
	}
	if cfg.verbose {
		opts.Warnf = func(format string, args ...any) {
			log.Printf("%s: %s", filename, fmt.Sprintf(format, args...))
		}
	}

	md, err := tiffmeta.Decode(opts)

	fmt.Fprintf(w, "==> %s <==\n", filename)
	printMetadata(w, md)
	if err != nil {
		fmt.Fprintf(w, "ERROR: %v\n", err)
	}
	fmt.Fprintln(w)
	return nil
}

func printMetadata(w io.Writer, md *tiffmeta.Metadata) {
	for _, d := range md.Directories() {
		for _, tag := range d.Tags() {
			fmt.Fprintln(w, tag.String())
		}
		for _, e := range d.Errors() {
			fmt.Fprintf(w, "[%s] ERROR: %s\n", d.Name(), e)
		}
	}
	if cfg, ok := md.ImageConfig(); ok {
		fmt.Fprintf(w, "[Image] Dimensions - %dx%d\n", cfg.Width, cfg.Height)
	}
	if t, err := md.DateTime(); err == nil && !t.IsZero() {
		fmt.Fprintf(w, "[Image] Date/Time - %s\n", t.Format("2006-01-02 15:04:05 -0700"))
	}
	if lat, long, ok := md.LatLong(); ok {
		fmt.Fprintf(w, "[Image] Location - %.6f, %.6f\n", lat, long)
	}
}

var errMmapUnsupported = errors.New("mmap not supported")

// openFile opens filename for reading. If useMmap is set and supported, the
// file is memory mapped and returned as data, otherwise as a reader.
// The returned func releases the resources.
func openFile(filename string, useMmap bool) (io.Reader, []byte, func(), error) {
	if useMmap {
		b, unmap, err := mmapFile(filename)
		if err == nil {
			return nil, b, unmap, nil
		}
		if err != errMmapUnsupported {
			return nil, nil, nil, err
		}
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, err
	}
	return f, nil, func() { f.Close() }, nil
}
