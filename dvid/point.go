package dvid

import (
	"fmt"
	"strconv"
	"strings"
)

// Point3d is an ordered list of three 32-bit signed integers.  It is used for volume,
// local and array points as well as sizes along each axis.
type Point3d [3]int32

// Add returns the addition of two points.
func (p Point3d) Add(p2 Point3d) Point3d {
	return Point3d{p[0] + p2[0], p[1] + p2[1], p[2] + p2[2]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(p2 Point3d) Point3d {
	return Point3d{p[0] - p2[0], p[1] - p2[1], p[2] - p2[2]}
}

// Mult returns the component-wise multiplication of the receiver by the passed point.
func (p Point3d) Mult(p2 Point3d) Point3d {
	return Point3d{p[0] * p2[0], p[1] * p2[1], p[2] * p2[2]}
}

// AddScalar adds a scalar value to each component.
func (p Point3d) AddScalar(value int32) Point3d {
	return Point3d{p[0] + value, p[1] + value, p[2] + value}
}

// Prod returns the product of the point elements.
func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

// AllPositive returns true if every component is greater than zero.
func (p Point3d) AllPositive() bool {
	return p[0] > 0 && p[1] > 0 && p[2] > 0
}

// Inside returns true if every component lies in [0, size).
func (p Point3d) Inside(size Point3d) bool {
	for i := 0; i < 3; i++ {
		if p[i] < 0 || p[i] >= size[i] {
			return false
		}
	}
	return true
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Chunk returns the chunk space coordinate of the chunk containing the point.
// Negative coordinates use floor division.
func (p Point3d) Chunk(size Point3d) ChunkPoint3d {
	var c ChunkPoint3d
	for i := 0; i < 3; i++ {
		if p[i] < 0 {
			c[i] = (p[i] - size[i] + 1) / size[i]
		} else {
			c[i] = p[i] / size[i]
		}
	}
	return c
}

// PointInChunk returns a point in containing chunk space for the given point.
// The result is always in [0, size).
func (p Point3d) PointInChunk(size Point3d) Point3d {
	var local Point3d
	for i := 0; i < 3; i++ {
		local[i] = p[i] % size[i]
		if local[i] < 0 {
			local[i] += size[i]
		}
	}
	return local
}

// ChunkPoint3d handles signed chunk coordinates.
type ChunkPoint3d [3]int32

// Add returns the chunk coordinate shifted by the given offset.
func (c ChunkPoint3d) Add(offset Point3d) ChunkPoint3d {
	return ChunkPoint3d{c[0] + offset[0], c[1] + offset[1], c[2] + offset[2]}
}

// MinPoint returns the smallest point coordinate of the given chunk.
func (c ChunkPoint3d) MinPoint(size Point3d) Point3d {
	return Point3d{c[0] * size[0], c[1] * size[1], c[2] * size[2]}
}

// Inside returns true if every component lies in [0, count).
func (c ChunkPoint3d) Inside(count Point3d) bool {
	return Point3d(c).Inside(count)
}

func (c ChunkPoint3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// StringToPoint3d parses a string of format "%d<sep>%d<sep>%d", e.g., "10_20_30".
func StringToPoint3d(str, separator string) (Point3d, error) {
	elems := strings.Split(str, separator)
	if len(elems) != 3 {
		return Point3d{}, fmt.Errorf("cannot convert %q into a 3d point", str)
	}
	var p Point3d
	for i, elem := range elems {
		v, err := strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return Point3d{}, fmt.Errorf("bad coordinate %q in point string %q: %v", elem, str, err)
		}
		p[i] = int32(v)
	}
	return p, nil
}

// StringToChunkPoint3d parses a chunk coordinate like StringToPoint3d.
func StringToChunkPoint3d(str, separator string) (ChunkPoint3d, error) {
	p, err := StringToPoint3d(str, separator)
	return ChunkPoint3d(p), err
}
