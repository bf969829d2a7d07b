package volume

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/janelia-flyem/dvedit/dvid"
)

var arrayShift = dvid.Point3d{1, 1, 1}

// WorldFromChunkAndPoint returns the world position of a chunk-relative point,
// chunkID * PointsPerChunk + localPoint.
func (f *Field) WorldFromChunkAndPoint(id dvid.ChunkPoint3d, local dvid.Point3d) mgl32.Vec3 {
	p := id.MinPoint(f.pointsPerChunk).Add(local)
	return mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
}

// UnpackVolumePoint returns the owning chunk and the local point within it.  Points
// outside [0, TotalPoints) are rejected rather than clamped.
func (f *Field) UnpackVolumePoint(p dvid.Point3d) (dvid.ChunkPoint3d, dvid.Point3d, error) {
	if !p.Inside(f.TotalPoints()) {
		return dvid.ChunkPoint3d{}, dvid.Point3d{}, fmt.Errorf("volume point %s not in volume of size %s: %w",
			p, f.TotalPoints(), ErrOutOfRange)
	}
	return p.Chunk(f.pointsPerChunk), p.PointInChunk(f.pointsPerChunk), nil
}

// ArrayPointFromLocalPoint shifts a local point past the low border slot.
func ArrayPointFromLocalPoint(local dvid.Point3d) dvid.Point3d {
	return local.Add(arrayShift)
}
