// Package binvox writes a coarse binvox voxel preview of a parsed OBJ mesh.
//
// Only the face outlines are voxelized: every corner and every point along
// each face edge marks the voxel it falls in. The interior of faces is
// left empty.
package binvox

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gmlewis/objp/obj"
	"github.com/gmlewis/stldice/v4/binvox"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxRes is the largest supported resolution.
const MaxRes = 1024

// Write voxelizes the edges of m into the named binvox file with res
// voxels along the longest axis of the mesh bounding box.
func Write(filename string, m obj.Mesh, res int) error {
	if res < 1 || res > MaxRes {
		return fmt.Errorf("resolution %v out of range [1,%v]", res, MaxRes)
	}

	g, err := newGrid(m, res)
	if err != nil {
		return err
	}
	log.Printf("Voxel grid: %v x %v x %v, voxel size %v", g.n[0], g.n[1], g.n[2], g.size)

	b := binvox.New(
		g.n[0],
		g.n[1],
		g.n[2],
		float64(g.min[0]),
		float64(g.min[1]),
		float64(g.min[2]),
		float64(g.size)*float64(res),
		false,
	)

	g.walkEdges(m, func(x, y, z int) { b.Add(x, y, z) })

	log.Printf("Writing: %v", filename)
	if err := b.Write(filename, 0, 0, 0, b.NX, b.NY, b.NZ); err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	return nil
}

// grid maps model coordinates to voxel indices.
type grid struct {
	min  mgl32.Vec3
	size float32 // edge length of a voxel
	n    [3]int
}

func newGrid(m obj.Mesh, res int) (*grid, error) {
	if m.NumCorners() == 0 {
		return nil, errors.New("mesh has no corners to voxelize")
	}

	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, f := range m {
		for _, c := range f {
			for i, v := range c.Position {
				if v < lo[i] {
					lo[i] = v
				}
				if v > hi[i] {
					hi[i] = v
				}
			}
		}
	}

	ext := hi.Sub(lo)
	var longest float32
	for _, v := range ext {
		if v > longest {
			longest = v
		}
	}
	if longest == 0 {
		longest = 1 // a single point
	}

	g := &grid{min: lo, size: longest / float32(res)}
	for i := range g.n {
		n := int(math.Ceil(float64(ext[i] / g.size)))
		if n < 1 {
			n = 1
		}
		if n > res {
			n = res
		}
		g.n[i] = n
	}
	return g, nil
}

// cell returns the voxel containing p, clamped to the grid.
func (g *grid) cell(p mgl32.Vec3) (x, y, z int) {
	var idx [3]int
	for i := range idx {
		v := int((p[i] - g.min[i]) / g.size)
		if v < 0 {
			v = 0
		}
		if v >= g.n[i] {
			v = g.n[i] - 1
		}
		idx[i] = v
	}
	return idx[0], idx[1], idx[2]
}

// walkEdges calls add for the voxels along every closed face outline.
func (g *grid) walkEdges(m obj.Mesh, add func(x, y, z int)) {
	for _, f := range m {
		for i := range f {
			a := f[i].Position
			b := f[(i+1)%len(f)].Position
			steps := int(math.Ceil(float64(b.Sub(a).Len()/g.size))) + 1
			for s := 0; s <= steps; s++ {
				t := float32(s) / float32(steps)
				add(g.cell(a.Add(b.Sub(a).Mul(t))))
			}
		}
	}
}
