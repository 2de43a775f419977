// Package obj parses the vertex, vertex-normal, and face subset of
// Wavefront OBJ files into a list of fully resolved faces.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrMalformedNumber is returned when a v or vn parameter is not a float.
	ErrMalformedNumber = errors.New("malformed number")
	// ErrWrongArity is returned when a v or vn line does not have exactly
	// three parameters, or when a non-triangle face is seen with
	// TrianglesOnly set.
	ErrWrongArity = errors.New("wrong arity")
	// ErrMalformedCorner is returned when a face corner is not of the form vi/ti/vni.
	ErrMalformedCorner = errors.New("malformed corner")
	// ErrUnknownReference is returned when a face corner refers to a
	// vertex or normal that has not been declared.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrIO is returned when the input cannot be read.
	ErrIO = errors.New("i/o failure")
)

// Corner is one resolved corner of a face.
type Corner struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Face is an ordered polygon. It may have any number of corners.
type Face []Corner

// Mesh is the ordered list of faces found in an OBJ file.
type Mesh []Face

// NumCorners returns the total number of corners across all faces.
func (m Mesh) NumCorners() int {
	var n int
	for _, f := range m {
		n += len(f)
	}
	return n
}

// CornerCounts returns the number of corners of each face.
func (m Mesh) CornerCounts() []int {
	counts := make([]int, 0, len(m))
	for _, f := range m {
		counts = append(counts, len(f))
	}
	return counts
}

// IsTriangles reports whether every face has exactly three corners.
func (m Mesh) IsTriangles() bool {
	for _, f := range m {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

// ParseOptions controls optional parser behavior.
type ParseOptions struct {
	// TrianglesOnly rejects faces that do not have exactly three corners.
	TrianglesOnly bool
}

// Parse reads OBJ lines from r and returns the resolved faces.
func Parse(r io.Reader) (Mesh, error) {
	return ParseWith(r, ParseOptions{})
}

// ParseWith is like Parse but honors opts.
func ParseWith(r io.Reader, opts ParseOptions) (Mesh, error) {
	p := newParser(opts)

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for lineNum := 1; s.Scan(); lineNum++ {
		if err := p.parseLine(s.Text()); err != nil {
			return nil, fmt.Errorf("line %v: %w", lineNum, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	return p.faces, nil
}

// parser holds the vertex and normal tables for a single Parse call.
// Index 0 of each table is a placeholder so that the 1-based OBJ
// indices can be used directly.
type parser struct {
	opts ParseOptions

	v     []mgl32.Vec3
	vn    []mgl32.Vec3
	faces Mesh
}

func newParser(opts ParseOptions) *parser {
	return &parser{
		opts: opts,
		v:    []mgl32.Vec3{{}},
		vn:   []mgl32.Vec3{{}},
	}
}

func (p *parser) parseLine(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	cmd, params := parts[0], parts[1:]
	switch cmd {
	case "v":
		v, err := parseVec3(cmd, params)
		if err != nil {
			return err
		}
		p.v = append(p.v, v)
	case "vn":
		vn, err := parseVec3(cmd, params)
		if err != nil {
			return err
		}
		p.vn = append(p.vn, vn)
	case "f":
		f, err := p.parseFace(params)
		if err != nil {
			return err
		}
		p.faces = append(p.faces, f)
	}

	return nil
}

func parseVec3(cmd string, params []string) (mgl32.Vec3, error) {
	if len(params) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%q: expected 3 arguments, got %v: %w", cmd, len(params), ErrWrongArity)
	}

	var v mgl32.Vec3
	for i, s := range params {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("%q: argument %v (%q): %w", cmd, i+1, s, ErrMalformedNumber)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (p *parser) parseFace(params []string) (Face, error) {
	if p.opts.TrianglesOnly && len(params) != 3 {
		return nil, fmt.Errorf(`"f": expected 3 corners, got %v: %w`, len(params), ErrWrongArity)
	}

	f := make(Face, 0, len(params))
	for i, s := range params {
		c, err := p.parseCorner(s)
		if err != nil {
			return nil, fmt.Errorf(`"f": corner %v (%q): %w`, i+1, s, err)
		}
		f = append(f, c)
	}
	return f, nil
}

// parseCorner resolves a vi/ti/vni token. The texture index is
// required to be present as a field but is otherwise ignored.
func (p *parser) parseCorner(s string) (Corner, error) {
	fields := strings.Split(s, "/")
	if len(fields) != 3 {
		return Corner{}, fmt.Errorf("expected 3 slash-separated fields, got %v: %w", len(fields), ErrMalformedCorner)
	}

	vi, err := strconv.Atoi(fields[0])
	if err != nil {
		return Corner{}, fmt.Errorf("vertex index %q: %w", fields[0], ErrMalformedCorner)
	}
	vni, err := strconv.Atoi(fields[2])
	if err != nil {
		return Corner{}, fmt.Errorf("normal index %q: %w", fields[2], ErrMalformedCorner)
	}

	pos, err := lookup(p.v, vi, "vertex")
	if err != nil {
		return Corner{}, err
	}
	n, err := lookup(p.vn, vni, "normal")
	if err != nil {
		return Corner{}, err
	}

	return Corner{Position: pos, Normal: n}, nil
}

func lookup(table []mgl32.Vec3, i int, kind string) (mgl32.Vec3, error) {
	if i <= 0 || i >= len(table) {
		return mgl32.Vec3{}, fmt.Errorf("%v %v not declared (have %v): %w", kind, i, len(table)-1, ErrUnknownReference)
	}
	return table[i], nil
}
