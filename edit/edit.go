// Package edit applies density edits from an editing tool to a volume.Field.  Edits are
// boxes of volume points that are clipped to the volume before being written.
package edit

import (
	"fmt"
	"time"

	"github.com/janelia-flyem/dvedit/dvid"
	"github.com/janelia-flyem/dvedit/volume"
)

// SlowEdit is the duration past which a box edit is logged at info level.
var SlowEdit = time.Second

// Box is an axis-aligned region of volume points [Point, Point+Size) set to Density.
type Box struct {
	Point   dvid.Point3d
	Size    dvid.Point3d
	Density float32
}

func (b Box) String() string {
	return fmt.Sprintf("box %s size %s density %g", b.Point, b.Size, b.Density)
}

// Result reports what an edit changed.
type Result struct {
	Points int `json:"points"` // volume points written
	Cells  int `json:"cells"`  // chunk array cells written, border caches included
}

// Clip intersects the box with [0, totalPoints).  It returns false if nothing remains.
func Clip(b Box, totalPoints dvid.Point3d) (Box, bool) {
	clipped := b
	for i := 0; i < 3; i++ {
		beg := int64(b.Point[i])
		end := beg + int64(b.Size[i])
		if beg < 0 {
			beg = 0
		}
		if end > int64(totalPoints[i]) {
			end = int64(totalPoints[i])
		}
		if end <= beg {
			return Box{}, false
		}
		clipped.Point[i] = int32(beg)
		clipped.Size[i] = int32(end - beg)
	}
	return clipped, true
}

// Apply writes the box into the field.  Points outside the volume are skipped.  Before
// anything is written, every point left after clipping must have an allocated owning
// chunk, otherwise Apply returns volume.ErrUnknownChunk and the field is unchanged.
func Apply(f *volume.Field, b Box) (Result, error) {
	for i := 0; i < 3; i++ {
		if b.Size[i] < 0 {
			return Result{}, fmt.Errorf("negative size in %s: %w", b, volume.ErrBadSize)
		}
	}
	var result Result
	clipped, ok := Clip(b, f.TotalPoints())
	if !ok {
		dvid.Debugf("Edit %s lies outside volume %s, nothing written\n", b, f.UUID())
		return result, nil
	}
	if err := checkOwners(f, clipped); err != nil {
		return result, err
	}

	timedLog := dvid.NewTimeLog()
	end := clipped.Point.Add(clipped.Size)
	var p dvid.Point3d
	for p[0] = clipped.Point[0]; p[0] < end[0]; p[0]++ {
		for p[1] = clipped.Point[1]; p[1] < end[1]; p[1]++ {
			for p[2] = clipped.Point[2]; p[2] < end[2]; p[2]++ {
				cells, err := f.SetDensity(p, b.Density)
				if err != nil {
					return result, err
				}
				result.Points++
				result.Cells += cells
			}
		}
	}
	if timedLog.Elapsed() > SlowEdit {
		timedLog.Infof("Slow edit: %s on volume %s (%d points, %d cells)", clipped, f.UUID(), result.Points, result.Cells)
	} else {
		timedLog.Debugf("Applied %s to volume %s (%d points, %d cells)", clipped, f.UUID(), result.Points, result.Cells)
	}
	return result, nil
}

// ApplyPoint writes a single volume point, skipping it if it lies outside the volume.
// It returns false if the point was skipped.
func ApplyPoint(f *volume.Field, p dvid.Point3d, density float32) (bool, error) {
	if !p.Inside(f.TotalPoints()) {
		return false, nil
	}
	if _, err := f.SetDensity(p, density); err != nil {
		return false, err
	}
	return true, nil
}

// checkOwners verifies that every chunk owning a point of the box is allocated.
func checkOwners(f *volume.Field, b Box) error {
	ppc := f.PointsPerChunk()
	first := b.Point.Chunk(ppc)
	last := b.Point.Add(b.Size).AddScalar(-1).Chunk(ppc)
	var id dvid.ChunkPoint3d
	for id[0] = first[0]; id[0] <= last[0]; id[0]++ {
		for id[1] = first[1]; id[1] <= last[1]; id[1]++ {
			for id[2] = first[2]; id[2] <= last[2]; id[2]++ {
				if !f.HasChunk(id) {
					return fmt.Errorf("%s needs chunk %s: %w", b, id, volume.ErrUnknownChunk)
				}
			}
		}
	}
	return nil
}
