package volume

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/dvedit/dvid"
)

// Sample is one logical sample point of the field as seen by a reader.
type Sample struct {
	Chunk   dvid.ChunkPoint3d `json:"chunk"`
	Local   dvid.Point3d      `json:"local"`
	World   mgl32.Vec3        `json:"world"`
	Density float32           `json:"density"`
}

// Density returns the value stored at an array point of a chunk, which may be one of
// the chunk's interior samples or a border cache.
func (f *Field) Density(id dvid.ChunkPoint3d, arrayPt dvid.Point3d) (float32, error) {
	c, found := f.chunk(id)
	if !found {
		return 0, fmt.Errorf("chunk %s: %w", id, ErrUnknownChunk)
	}
	if !arrayPt.Inside(c.size) {
		return 0, fmt.Errorf("array point %s not in chunk array of size %s: %w", arrayPt, c.size, ErrOutOfRange)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return c.get(arrayPt), nil
}

// DensityAt returns the owning chunk's interior sample for a volume point.
func (f *Field) DensityAt(p dvid.Point3d) (float32, error) {
	id, local, err := f.UnpackVolumePoint(p)
	if err != nil {
		return 0, err
	}
	return f.Density(id, ArrayPointFromLocalPoint(local))
}

// ForEachSample calls fn for every interior sample of every allocated chunk within
// [0, ChunkCount).  Chunks are visited in x, y, z order and points within a chunk likewise.
// Iteration stops at the first error returned by fn.  The field is read-locked for the
// duration, so fn must not edit the field.
func (f *Field) ForEachSample(fn func(Sample) error) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var id dvid.ChunkPoint3d
	for id[0] = 0; id[0] < f.chunkCount[0]; id[0]++ {
		for id[1] = 0; id[1] < f.chunkCount[1]; id[1]++ {
			for id[2] = 0; id[2] < f.chunkCount[2]; id[2]++ {
				c, found := f.chunk(id)
				if !found {
					continue
				}
				var local dvid.Point3d
				for local[0] = 0; local[0] < f.pointsPerChunk[0]; local[0]++ {
					for local[1] = 0; local[1] < f.pointsPerChunk[1]; local[1]++ {
						for local[2] = 0; local[2] < f.pointsPerChunk[2]; local[2]++ {
							s := Sample{
								Chunk:   id,
								Local:   local,
								World:   f.WorldFromChunkAndPoint(id, local),
								Density: c.get(ArrayPointFromLocalPoint(local)),
							}
							if err := fn(s); err != nil {
								return err
							}
						}
					}
				}
			}
		}
	}
	return nil
}

// Stats summarizes the interior samples of a field.
type Stats struct {
	Min     float32 `json:"min"`
	Max     float32 `json:"max"`
	Mean    float64 `json:"mean"`
	NonZero int64   `json:"nonzero"`
	Samples int64   `json:"samples"`

	sum float64
}

// Stats computes summary statistics over all interior samples.  Chunks are scanned
// concurrently while the field is read-locked.
func (f *Field) Stats(ctx context.Context) (Stats, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	partial := make([]Stats, len(f.chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, c := range f.chunks {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			partial[i] = c.interiorStats(f.pointsPerChunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for i, s := range partial {
		if i == 0 || s.Min < total.Min {
			total.Min = s.Min
		}
		if i == 0 || s.Max > total.Max {
			total.Max = s.Max
		}
		total.NonZero += s.NonZero
		total.Samples += s.Samples
		total.sum += s.sum
	}
	if total.Samples > 0 {
		total.Mean = total.sum / float64(total.Samples)
	}
	return total, nil
}
