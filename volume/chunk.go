package volume

import (
	"github.com/janelia-flyem/dvedit/dvid"
)

// chunk is the dense sample storage for one chunk, including its border caches.
// Values are stored with x varying fastest.
type chunk struct {
	id   dvid.ChunkPoint3d
	size dvid.Point3d // array dimensions, i.e., points per chunk including border
	data []float32
}

func newChunk(id dvid.ChunkPoint3d, size dvid.Point3d) *chunk {
	return &chunk{
		id:   id,
		size: size,
		data: make([]float32, size.Prod()),
	}
}

// index returns the position of the array point within data.  The point must be valid.
func (c *chunk) index(p dvid.Point3d) int {
	return int(p[0]) + int(c.size[0])*(int(p[1])+int(c.size[1])*int(p[2]))
}

func (c *chunk) get(p dvid.Point3d) float32 {
	return c.data[c.index(p)]
}

func (c *chunk) set(p dvid.Point3d, value float32) {
	c.data[c.index(p)] = value
}

// fillArrayBox sets every array cell in the box [offset, offset+size) to value.
// The box is clipped to the array extents.
func (c *chunk) fillArrayBox(offset, size dvid.Point3d, value float32) {
	var beg, end dvid.Point3d
	for i := 0; i < 3; i++ {
		beg[i] = offset[i]
		if beg[i] < 0 {
			beg[i] = 0
		}
		end[i] = offset[i] + size[i]
		if end[i] > c.size[i] {
			end[i] = c.size[i]
		}
	}
	var p dvid.Point3d
	for p[2] = beg[2]; p[2] < end[2]; p[2]++ {
		for p[1] = beg[1]; p[1] < end[1]; p[1]++ {
			for p[0] = beg[0]; p[0] < end[0]; p[0]++ {
				c.set(p, value)
			}
		}
	}
}

// interiorStats summarizes the chunk's own samples, skipping border caches.
func (c *chunk) interiorStats(pointsPerChunk dvid.Point3d) Stats {
	s := Stats{Min: c.get(dvid.Point3d{1, 1, 1}), Max: c.get(dvid.Point3d{1, 1, 1})}
	var sum float64
	var p dvid.Point3d
	for p[2] = 1; p[2] <= pointsPerChunk[2]; p[2]++ {
		for p[1] = 1; p[1] <= pointsPerChunk[1]; p[1]++ {
			for p[0] = 1; p[0] <= pointsPerChunk[0]; p[0]++ {
				v := c.get(p)
				if v < s.Min {
					s.Min = v
				}
				if v > s.Max {
					s.Max = v
				}
				if v != 0 {
					s.NonZero++
				}
				sum += float64(v)
				s.Samples++
			}
		}
	}
	s.sum = sum
	return s
}
