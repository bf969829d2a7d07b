package volume

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/DmitriyVTitov/size"
	"github.com/twinj/uuid"

	"github.com/janelia-flyem/dvedit/dvid"
)

// Field is a chunked density volume.  Chunk buffers live in an arena indexed by chunk
// coordinate.  A single lock guards all chunks: SetDensity holds it exclusively for the
// owner and all neighbor writes, and every read holds it shared.
type Field struct {
	mu sync.RWMutex

	uuid           string
	pointsPerChunk dvid.Point3d
	chunkCount     dvid.Point3d

	chunks []*chunk
	index  map[dvid.ChunkPoint3d]int

	version atomic.Uint64
}

// New returns a field with every chunk in [0, chunkCount) allocated and zero-filled.
func New(pointsPerChunk, chunkCount dvid.Point3d) (*Field, error) {
	if err := checkDims(pointsPerChunk, chunkCount); err != nil {
		return nil, err
	}
	if chunkCount.Prod() > MaxChunks {
		return nil, fmt.Errorf("chunk count %s exceeds limit of %d chunks: %w", chunkCount, MaxChunks, ErrBadSize)
	}
	ids := make([]dvid.ChunkPoint3d, 0, chunkCount.Prod())
	var id dvid.ChunkPoint3d
	for id[0] = 0; id[0] < chunkCount[0]; id[0]++ {
		for id[1] = 0; id[1] < chunkCount[1]; id[1]++ {
			for id[2] = 0; id[2] < chunkCount[2]; id[2]++ {
				ids = append(ids, id)
			}
		}
	}
	return newField(pointsPerChunk, chunkCount, ids)
}

// NewSparse returns a field where only the given chunks are allocated.  Every chunk
// must lie within [0, chunkCount) and appear once.
func NewSparse(pointsPerChunk, chunkCount dvid.Point3d, ids []dvid.ChunkPoint3d) (*Field, error) {
	if err := checkDims(pointsPerChunk, chunkCount); err != nil {
		return nil, err
	}
	if len(ids) > MaxChunks {
		return nil, fmt.Errorf("%d chunks exceeds limit of %d: %w", len(ids), MaxChunks, ErrBadSize)
	}
	seen := make(map[dvid.ChunkPoint3d]struct{}, len(ids))
	for _, id := range ids {
		if !id.Inside(chunkCount) {
			return nil, fmt.Errorf("chunk %s outside chunk count %s: %w", id, chunkCount, ErrBadSize)
		}
		if _, found := seen[id]; found {
			return nil, fmt.Errorf("chunk %s listed more than once: %w", id, ErrBadSize)
		}
		seen[id] = struct{}{}
	}
	return newField(pointsPerChunk, chunkCount, ids)
}

const (
	// MaxChunkCells is the largest chunk array, border caches included.
	MaxChunkCells = 1 << 24

	// MaxChunks is the largest number of chunks allocated for one field.
	MaxChunks = 1 << 20
)

// checkDims rejects dimensions whose chunk arrays or volume extents cannot be addressed
// with int32 points or would exceed the allocation limits.
func checkDims(pointsPerChunk, chunkCount dvid.Point3d) error {
	if !pointsPerChunk.AllPositive() {
		return fmt.Errorf("points per chunk %s must be positive: %w", pointsPerChunk, ErrBadSize)
	}
	if !chunkCount.AllPositive() {
		return fmt.Errorf("chunk count %s must be positive: %w", chunkCount, ErrBadSize)
	}
	var cells int64 = 1
	for i := 0; i < 3; i++ {
		arraySize := int64(pointsPerChunk[i]) + 2
		if arraySize > MaxChunkCells {
			return fmt.Errorf("points per chunk %s too large: %w", pointsPerChunk, ErrBadSize)
		}
		cells *= arraySize
		if int64(pointsPerChunk[i])*int64(chunkCount[i]) > math.MaxInt32 {
			return fmt.Errorf("volume of %s chunks with %s points each overflows point coordinates: %w",
				chunkCount, pointsPerChunk, ErrBadSize)
		}
	}
	if cells > MaxChunkCells {
		return fmt.Errorf("chunk array of %d cells exceeds limit of %d: %w", cells, MaxChunkCells, ErrBadSize)
	}
	return nil
}

func newField(pointsPerChunk, chunkCount dvid.Point3d, ids []dvid.ChunkPoint3d) (*Field, error) {
	f := &Field{
		uuid:           fmt.Sprintf("%x", uuid.NewV4().Bytes()),
		pointsPerChunk: pointsPerChunk,
		chunkCount:     chunkCount,
		chunks:         make([]*chunk, 0, len(ids)),
		index:          make(map[dvid.ChunkPoint3d]int, len(ids)),
	}
	arraySize := f.PointsPerChunkIncludingBorder()
	for _, id := range ids {
		f.index[id] = len(f.chunks)
		f.chunks = append(f.chunks, newChunk(id, arraySize))
	}
	dvid.Debugf("Allocated density volume %s: %d chunks of %s points, %s total points\n",
		f.uuid, len(f.chunks), arraySize, f.TotalPoints())
	return f, nil
}

// UUID returns the identifier assigned to the field at creation.
func (f *Field) UUID() string {
	return f.uuid
}

// Version returns the number of successful SetDensity calls on the field.
func (f *Field) Version() uint64 {
	return f.version.Load()
}

// PointsPerChunk returns the number of interior sample points along each axis of a chunk.
func (f *Field) PointsPerChunk() dvid.Point3d {
	return f.pointsPerChunk
}

// PointsPerChunkIncludingBorder returns the dimensions of each chunk array.
func (f *Field) PointsPerChunkIncludingBorder() dvid.Point3d {
	return f.pointsPerChunk.AddScalar(2)
}

// ChunkCount returns the number of chunks along each axis.
func (f *Field) ChunkCount() dvid.Point3d {
	return f.chunkCount
}

// TotalPoints returns the size of the volume point lattice.
func (f *Field) TotalPoints() dvid.Point3d {
	return f.pointsPerChunk.Mult(f.chunkCount)
}

// NumChunks returns the number of allocated chunks.
func (f *Field) NumChunks() int {
	return len(f.chunks)
}

// HasChunk returns true if the chunk is allocated.
func (f *Field) HasChunk(id dvid.ChunkPoint3d) bool {
	_, found := f.index[id]
	return found
}

// ChunkIDs returns the allocated chunk coordinates ordered by x, then y, then z.
func (f *Field) ChunkIDs() []dvid.ChunkPoint3d {
	ids := make([]dvid.ChunkPoint3d, len(f.chunks))
	for i, c := range f.chunks {
		ids[i] = c.id
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return ids
}

// MemoryBytes estimates the memory held by the field.
func (f *Field) MemoryBytes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return size.Of(f.chunks) + size.Of(f.index)
}

func (f *Field) chunk(id dvid.ChunkPoint3d) (*chunk, bool) {
	i, found := f.index[id]
	if !found {
		return nil, false
	}
	return f.chunks[i], true
}
