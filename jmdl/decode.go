package jmdl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gmlewis/objp/obj"
)

var (
	// ErrBadTag is returned by Decode when a section tag does not match.
	ErrBadTag = errors.New("bad section tag")
	// ErrCornerCounts is returned by Decode when the supplied corner
	// counts do not agree with the face count in the file.
	ErrCornerCounts = errors.New("corner counts do not match face count")
)

// Decode reads a JMDL stream from r. Since the format does not store
// per-face corner counts, the caller supplies them in cornerCounts.
// A nil cornerCounts means every face is a triangle.
func Decode(r io.Reader, cornerCounts []int) (obj.Mesh, error) {
	br := bufio.NewReader(r)

	if err := readTag(br, tagModel); err != nil {
		return nil, err
	}
	var numFaces uint32
	if err := read(br, &numFaces, "face count"); err != nil {
		return nil, err
	}

	if cornerCounts != nil && len(cornerCounts) != int(numFaces) {
		return nil, fmt.Errorf("file has %v faces, got %v corner counts: %w", numFaces, len(cornerCounts), ErrCornerCounts)
	}
	for i, n := range cornerCounts {
		if n < 0 {
			return nil, fmt.Errorf("face %v: negative corner count %v: %w", i, n, ErrCornerCounts)
		}
	}

	if err := readTag(br, tagVertex); err != nil {
		return nil, err
	}

	// The face count comes from the stream, so faces are only allocated
	// as their positions are read.
	var m obj.Mesh
	for i := 0; i < int(numFaces); i++ {
		n := 3
		if cornerCounts != nil {
			n = cornerCounts[i]
		}
		var f obj.Face
		for j := 0; j < n; j++ {
			var c obj.Corner
			if err := read(br, &c.Position, fmt.Sprintf("face %v corner %v", i, j)); err != nil {
				return nil, err
			}
			f = append(f, c)
		}
		m = append(m, f)
	}

	if err := readTag(br, tagNormals); err != nil {
		return nil, err
	}
	for i, f := range m {
		for j := range f {
			if err := read(br, &f[j].Normal, fmt.Sprintf("face %v corner %v", i, j)); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func readTag(r io.Reader, want [tagSize]byte) error {
	var got [tagSize]byte
	if err := read(r, &got, fmt.Sprintf("tag %q", want[:])); err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("got tag %q, want %q: %w", got[:], want[:], ErrBadTag)
	}
	return nil
}

func read(r io.Reader, data interface{}, what string) error {
	if err := binary.Read(r, binary.BigEndian, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read %v: %w", what, err)
	}
	return nil
}
