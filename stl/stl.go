// Package stl provides a binary STL file writer for parsed OBJ meshes.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gmlewis/objp/obj"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	headerSize = 80
)

// Client is a binary STL file writer client.
type Client struct {
	out   writeSeekCloser
	count uint32
	err   error
}

// Tri represents an STL triangle.
type Tri struct {
	// Normal plus three vertex triplets: [3]float{x,y,z}
	N, V1, V2, V3 mgl32.Vec3
	_             uint16 // unused attribute byte count
}

// New creates a new binary STL file writer.
func New(filename string) (*Client, error) {
	out, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	c, err := newClient(out)
	if err != nil {
		out.Close()
		return nil, err
	}
	return c, nil
}

func newClient(out writeSeekCloser) (*Client, error) {
	// Write header
	header := struct {
		_ [headerSize]uint8
		_ uint32 // count will be overwritten on Close.
	}{}
	if err := binary.Write(out, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("error writing header: %v", err)
	}
	return &Client{out: out}, nil
}

// Write writes a triangle to the STL file.
// After the first failure, Write keeps returning the same error.
func (c *Client) Write(t *Tri) error {
	if c.err != nil {
		return c.err
	}
	if err := binary.Write(c.out, binary.LittleEndian, t); err != nil {
		c.err = fmt.Errorf("write triangle %#v: %v", *t, err)
		return c.err
	}
	c.count++
	return nil
}

// Close patches the triangle count into the header and closes the file.
// The file is closed even if an earlier Write failed.
func (c *Client) Close() error {
	if c.err != nil {
		c.out.Close()
		return c.err
	}

	if _, err := c.out.Seek(headerSize, io.SeekStart); err != nil {
		c.out.Close()
		return fmt.Errorf("seek: %v", err)
	}

	if err := binary.Write(c.out, binary.LittleEndian, &c.count); err != nil {
		c.out.Close()
		return fmt.Errorf("write count %v: %v", c.count, err)
	}

	return c.out.Close()
}

type writeSeekCloser interface {
	io.Writer
	io.Seeker
	io.Closer
}

// TriWriter is a writer that accepts STL triangles.
type TriWriter interface {
	Write(t *Tri) error
}

// Export writes m to the named file as binary STL.
func Export(filename string, m obj.Mesh) error {
	w, err := New(filename)
	if err != nil {
		return fmt.Errorf("stl.New: %w", err)
	}

	log.Printf("Writing: %v", filename)
	if err := WriteMesh(w, m); err != nil {
		w.Close()
		return err
	}

	return w.Close()
}

// WriteMesh writes every face of m to w. Faces with more than three
// corners are split into a fan around their first corner; faces with
// fewer than three corners are skipped.
func WriteMesh(w TriWriter, m obj.Mesh) error {
	for i, f := range m {
		for j := 2; j < len(f); j++ {
			a, b, c := f[0], f[j-1], f[j]
			t := &Tri{
				N:  facetNormal(a, b, c),
				V1: a.Position,
				V2: b.Position,
				V3: c.Position,
			}
			if err := w.Write(t); err != nil {
				return fmt.Errorf("face %v: %v", i, err)
			}
		}
	}
	return nil
}

// facetNormal averages the corner normals. When they cancel out, the
// winding-order normal of the triangle is used instead.
func facetNormal(a, b, c obj.Corner) mgl32.Vec3 {
	n := a.Normal.Add(b.Normal).Add(c.Normal)
	if n.Len() > 1e-6 {
		return n.Normalize()
	}

	n = b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
	if n.Len() > 1e-6 {
		return n.Normalize()
	}
	return mgl32.Vec3{}
}
