// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bep/tiffmeta"
	qt "github.com/frankban/quicktest"
)

// testTIFF returns a big endian TIFF with Make set to cameraMake in IFD0.
func testTIFF(cameraMake string) []byte {
	var b bytes.Buffer
	b.WriteString("MM\x00\x2a\x00\x00\x00\x08")
	// One entry, Make as ASCII with the value stored after the IFD.
	b.Write([]byte{0x00, 0x01, 0x01, 0x0f, 0x00, 0x02})
	n := len(cameraMake) + 1
	b.Write([]byte{0, 0, 0, byte(n), 0, 0, 0, 26})
	b.Write([]byte{0, 0, 0, 0})
	b.WriteString(cameraMake)
	b.WriteByte(0)
	return b.Bytes()
}

func writeTestFiles(c *qt.C, n int) []string {
	dir := c.TempDir()
	var filenames []string
	for i := range n {
		filename := filepath.Join(dir, fmt.Sprintf("image%d.tif", i))
		c.Assert(os.WriteFile(filename, testTIFF(fmt.Sprintf("Camera %d", i)), 0o644), qt.IsNil)
		filenames = append(filenames, filename)
	}
	return filenames
}

func TestRun(t *testing.T) {
	c := qt.New(t)

	filenames := writeTestFiles(c, 10)

	for _, useMmap := range []bool{false, true} {
		c.Run(fmt.Sprintf("mmap=%t", useMmap), func(c *qt.C) {
			var buf bytes.Buffer
			cfg := config{sources: tiffmeta.EXIF, mmap: useMmap, jobs: 3}
			c.Assert(run(context.Background(), cfg, filenames, &buf), qt.IsNil)

			out := buf.String()
			// Output is in argument order.
			pos := -1
			for i, filename := range filenames {
				header := fmt.Sprintf("==> %s <==\n[Exif IFD0] Make - Camera %d\n", filename, i)
				idx := strings.Index(out, header)
				c.Assert(idx > pos, qt.IsTrue, qt.Commentf("%s", out))
				pos = idx
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	c := qt.New(t)

	filenames := writeTestFiles(c, 2)
	missing := filepath.Join(filepath.Dir(filenames[0]), "missing.tif")
	invalid := filepath.Join(filepath.Dir(filenames[0]), "invalid.tif")
	c.Assert(os.WriteFile(invalid, []byte("MM\x00\x2bxxxx"), 0o644), qt.IsNil)

	var buf bytes.Buffer
	err := run(context.Background(), config{}, []string{filenames[0], missing, invalid, filenames[1]}, &buf)
	c.Assert(err, qt.ErrorMatches, "1 of 4 files could not be opened")

	out := buf.String()
	c.Assert(out, qt.Contains, missing+": open "+missing)
	// Decode errors are printed but do not fail the run.
	c.Assert(out, qt.Contains, "ERROR: tiffmeta: invalid TIFF marker")
	c.Assert(out, qt.Contains, "[Exif IFD0] Make - Camera 1")
}

func TestDecodeFileVerbose(t *testing.T) {
	c := qt.New(t)

	filename := filepath.Join(c.TempDir(), "image.jpg")
	// The extension decides the format unless one is set.
	c.Assert(os.WriteFile(filename, testTIFF("Camera"), 0o644), qt.IsNil)

	var buf bytes.Buffer
	c.Assert(decodeFile(config{verbose: true}, filename, &buf), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "ERROR: tiffmeta: invalid format")

	buf.Reset()
	c.Assert(decodeFile(config{format: tiffmeta.TIFF}, filename, &buf), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "[Exif IFD0] Make - Camera")
}
