package volume

import (
	"github.com/janelia-flyem/dvedit/dvid"
)

// NewTestVolume returns a 2x2x2 chunk field with 2x2x2 points per chunk where the
// central cube of volume points [1,3) on every axis has density 1.  The cube is painted
// directly in array space, border caches included, so the field starts out consistent.
func NewTestVolume() *Field {
	f, err := New(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2})
	if err != nil {
		panic(err) // dimensions are constant
	}
	cube := dvid.Point3d{2, 2, 2}
	for _, c := range f.chunks {
		// The low chunk along an axis holds the cube at array [2,4); the high chunk at [0,2).
		var offset dvid.Point3d
		for axis := 0; axis < 3; axis++ {
			if c.id[axis] == 0 {
				offset[axis] = 2
			}
		}
		c.fillArrayBox(offset, cube, 1)
	}
	return f
}
