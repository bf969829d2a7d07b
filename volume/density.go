package volume

import (
	"fmt"

	"github.com/janelia-flyem/dvedit/dvid"
)

// SetDensity writes density at the volume point into the owning chunk and into the
// border cache of every allocated chunk that shares the point.  It returns the number
// of array cells written.  If the owning chunk does not exist, nothing is written.
func (f *Field) SetDensity(p dvid.Point3d, density float32) (int, error) {
	id, local, err := f.UnpackVolumePoint(p)
	if err != nil {
		return 0, err
	}
	owner, found := f.chunk(id)
	if !found {
		return 0, fmt.Errorf("volume point %s is owned by chunk %s: %w", p, id, ErrUnknownChunk)
	}
	arrayPt := ArrayPointFromLocalPoint(local)
	offsets := neighborOffsets(local, f.pointsPerChunk)

	f.mu.Lock()
	defer f.mu.Unlock()

	owner.set(arrayPt, density)
	written := 1
	for _, offset := range offsets {
		neighbor, found := f.chunk(id.Add(offset))
		if !found {
			continue
		}
		neighbor.set(arrayPt.Sub(offset.Mult(f.pointsPerChunk)), density)
		written++
	}
	f.version.Add(1)
	return written, nil
}

// neighborOffsets returns the chunk offsets of every neighbor that caches the local
// point in its border: each touched face, each pair of touched faces on different axes
// (edges) and the triple (corner).  A local point touches the -1 face of an axis at 0
// and the +1 face at pointsPerChunk-1; with a single point per chunk along an axis it
// touches both.
func neighborOffsets(local, pointsPerChunk dvid.Point3d) []dvid.Point3d {
	var touched [3][]int32
	for axis := 0; axis < 3; axis++ {
		touched[axis] = []int32{0}
		if local[axis] == 0 {
			touched[axis] = append(touched[axis], -1)
		}
		if local[axis] == pointsPerChunk[axis]-1 {
			touched[axis] = append(touched[axis], 1)
		}
	}
	var offsets []dvid.Point3d
	for _, dx := range touched[0] {
		for _, dy := range touched[1] {
			for _, dz := range touched[2] {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, dvid.Point3d{dx, dy, dz})
			}
		}
	}
	return offsets
}
