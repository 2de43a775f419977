// Package jmdl writes and reads JMDL files, a compact big-endian mesh
// container holding resolved corner positions followed by corner normals.
//
// Layout:
//
//	"JMDL" uint32(faces) "JVTX" {x,y,z float32}... "JNRM" {x,y,z float32}...
//
// The file does not record how many corners each face has. Readers must
// know this from elsewhere (usually all faces are triangles).
package jmdl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gmlewis/objp/obj"
)

const (
	tagSize    = 4
	countSize  = 4
	vec3Size   = 12
	headerSize = tagSize + countSize
)

var (
	tagModel   = [tagSize]byte{'J', 'M', 'D', 'L'}
	tagVertex  = [tagSize]byte{'J', 'V', 'T', 'X'}
	tagNormals = [tagSize]byte{'J', 'N', 'R', 'M'}
)

// ErrIO is returned when the output cannot be written.
var ErrIO = errors.New("i/o failure")

// Size returns the number of bytes Encode writes for m.
func Size(m obj.Mesh) int {
	return headerSize + 2*tagSize + 2*vec3Size*m.NumCorners()
}

// Encode writes m to w in JMDL format. All positions are written before
// all normals, both in face-then-corner order.
func Encode(w io.Writer, m obj.Mesh) error {
	bw := bufio.NewWriter(w)

	if err := write(bw, tagModel); err != nil {
		return err
	}
	if err := write(bw, uint32(len(m))); err != nil {
		return err
	}

	if err := write(bw, tagVertex); err != nil {
		return err
	}
	for _, f := range m {
		for _, c := range f {
			if err := write(bw, c.Position); err != nil {
				return err
			}
		}
	}

	if err := write(bw, tagNormals); err != nil {
		return err
	}
	for _, f := range m {
		for _, c := range f {
			if err := write(bw, c.Normal); err != nil {
				return err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %v: %w", err, ErrIO)
	}
	return nil
}

func write(w io.Writer, data interface{}) error {
	if err := binary.Write(w, binary.BigEndian, data); err != nil {
		return fmt.Errorf("write %v: %v: %w", data, err, ErrIO)
	}
	return nil
}
