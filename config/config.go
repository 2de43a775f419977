// Package config reads objp options files.
//
// An options file uses git-config syntax:
//
//	[objp]
//	TrianglesOnly = true
//	STL = out.stl
//	Binvox = out.binvox
//	BinvoxRes = 128
//	Verify = true
package config

import (
	"fmt"

	"gopkg.in/gcfg.v1"
)

// DefaultBinvoxRes is the binvox resolution used when none is given.
const DefaultBinvoxRes = 128

// MaxBinvoxRes is the largest accepted binvox resolution.
const MaxBinvoxRes = 1024

// Options are the conversion options.
type Options struct {
	// TrianglesOnly rejects faces that do not have three corners.
	TrianglesOnly bool
	// STL is an optional path for a binary STL copy of the mesh.
	STL string
	// Binvox is an optional path for a voxel preview of the mesh.
	Binvox string
	// BinvoxRes is the number of voxels along the longest axis.
	BinvoxRes int
	// Verify decodes the written file and compares it with the parsed mesh.
	Verify bool
}

type wrapper struct {
	Objp Options
}

// Default returns the options used when no file is given.
func Default() *Options {
	return &Options{BinvoxRes: DefaultBinvoxRes}
}

// Read reads the named options file on top of the defaults.
func Read(filename string) (*Options, error) {
	w := &wrapper{Objp: *Default()}
	if err := gcfg.ReadFileInto(w, filename); err != nil {
		return nil, err
	}
	if err := w.Objp.CheckInit(); err != nil {
		return nil, fmt.Errorf("%v: %v", filename, err)
	}
	return &w.Objp, nil
}

// ReadString is like Read but parses the options from s.
func ReadString(s string) (*Options, error) {
	w := &wrapper{Objp: *Default()}
	if err := gcfg.ReadStringInto(w, s); err != nil {
		return nil, err
	}
	if err := w.Objp.CheckInit(); err != nil {
		return nil, err
	}
	return &w.Objp, nil
}

// CheckInit validates the options.
func (o *Options) CheckInit() error {
	if o.BinvoxRes <= 0 {
		return fmt.Errorf(
			"BinvoxRes must be positive, but is %d", o.BinvoxRes,
		)
	} else if o.BinvoxRes > MaxBinvoxRes {
		return fmt.Errorf(
			"BinvoxRes must be at most %d, but is %d", MaxBinvoxRes, o.BinvoxRes,
		)
	}
	return nil
}
