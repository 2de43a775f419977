// Package convert packs Wavefront OBJ files into JMDL files.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gmlewis/objp/binvox"
	"github.com/gmlewis/objp/config"
	"github.com/gmlewis/objp/jmdl"
	"github.com/gmlewis/objp/obj"
	"github.com/gmlewis/objp/stl"
)

// ErrVerify is returned when the written JMDL file does not decode back
// to the parsed mesh.
var ErrVerify = errors.New("verification failed")

// Stats describes a finished conversion.
type Stats struct {
	Faces     int
	Corners   int
	Bytes     int
	Triangles bool // every face has three corners
}

// Files converts the OBJ file inPath into the JMDL file outPath.
// Both files are closed before Files returns. If the conversion fails
// after outPath was created, the partial file is left in place.
func Files(inPath, outPath string, opts *config.Options) (stats *Stats, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, obj.ErrIO)
	}
	defer in.Close()

	m, err := parse(in, opts)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", inPath, err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, jmdl.ErrIO)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %v: %v: %w", outPath, cerr, jmdl.ErrIO)
		}
	}()

	if err := encode(out, m, opts); err != nil {
		return nil, fmt.Errorf("%v: %w", outPath, err)
	}
	if err := export(m, opts); err != nil {
		return nil, err
	}

	return newStats(m), nil
}

// Stream converts OBJ text from r into JMDL bytes written to w.
// File exports named in opts are also written.
func Stream(r io.Reader, w io.Writer, opts *config.Options) (*Stats, error) {
	m, err := parse(r, opts)
	if err != nil {
		return nil, err
	}
	if err := encode(w, m, opts); err != nil {
		return nil, err
	}
	if err := export(m, opts); err != nil {
		return nil, err
	}
	return newStats(m), nil
}

func parse(r io.Reader, opts *config.Options) (obj.Mesh, error) {
	return obj.ParseWith(r, obj.ParseOptions{TrianglesOnly: opts.TrianglesOnly})
}

func encode(w io.Writer, m obj.Mesh, opts *config.Options) error {
	log.Printf("Packing %v faces...", len(m))

	if !opts.Verify {
		return jmdl.Encode(w, m)
	}

	var buf bytes.Buffer
	buf.Grow(jmdl.Size(m))
	if err := jmdl.Encode(&buf, m); err != nil {
		return err
	}
	if err := verify(buf.Bytes(), m); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write: %v: %w", err, jmdl.ErrIO)
	}
	return nil
}

// verify decodes data and checks that it matches m exactly.
func verify(data []byte, m obj.Mesh) error {
	if len(data) != jmdl.Size(m) {
		return fmt.Errorf("encoded %v bytes, want %v: %w", len(data), jmdl.Size(m), ErrVerify)
	}

	got, err := jmdl.Decode(bytes.NewReader(data), m.CornerCounts())
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrVerify)
	}
	for i, f := range m {
		for j, c := range f {
			if got[i][j] != c {
				return fmt.Errorf("face %v corner %v: got %v, want %v: %w", i, j, got[i][j], c, ErrVerify)
			}
		}
	}

	log.Printf("Verified %v faces (%v bytes).", len(m), len(data))
	return nil
}

func export(m obj.Mesh, opts *config.Options) error {
	if opts.STL != "" {
		if err := stl.Export(opts.STL, m); err != nil {
			return fmt.Errorf("stl.Export: %w", err)
		}
	}

	if opts.Binvox != "" {
		if err := binvox.Write(opts.Binvox, m, opts.BinvoxRes); err != nil {
			return fmt.Errorf("binvox.Write: %w", err)
		}
	}

	return nil
}

func newStats(m obj.Mesh) *Stats {
	return &Stats{
		Faces:     len(m),
		Corners:   m.NumCorners(),
		Bytes:     jmdl.Size(m),
		Triangles: m.IsTriangles(),
	}
}
