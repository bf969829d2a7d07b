package volume

import (
	"context"
	"errors"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/janelia-flyem/dvedit/dvid"
)

func (s *VolumeSuite) TestForEachSample(c *C) {
	f, err := New(dvid.Point3d{2, 1, 3}, dvid.Point3d{2, 2, 1})
	c.Assert(err, IsNil)
	_, err = f.SetDensity(dvid.Point3d{3, 1, 2}, 0.5)
	c.Assert(err, IsNil)

	var samples []Sample
	err = f.ForEachSample(func(s Sample) error {
		samples = append(samples, s)
		return nil
	})
	c.Assert(err, IsNil)
	c.Assert(samples, HasLen, int(f.TotalPoints().Prod()))

	c.Assert(samples[0].Chunk, Equals, dvid.ChunkPoint3d{0, 0, 0})
	c.Assert(samples[1].Local, Equals, dvid.Point3d{0, 0, 1})
	c.Assert(samples[3].Local, Equals, dvid.Point3d{1, 0, 0})
	c.Assert(samples[6].Chunk, Equals, dvid.ChunkPoint3d{0, 1, 0})

	var found int
	for _, s := range samples {
		p := s.Chunk.MinPoint(f.PointsPerChunk()).Add(s.Local)
		c.Assert(s.World[0], Equals, float32(p[0]))
		c.Assert(s.World[1], Equals, float32(p[1]))
		c.Assert(s.World[2], Equals, float32(p[2]))
		if s.Density != 0 {
			c.Assert(p, Equals, dvid.Point3d{3, 1, 2})
			c.Assert(s.Density, Equals, float32(0.5))
			found++
		}
	}
	c.Assert(found, Equals, 1)

	stop := errors.New("stop")
	var n int
	err = f.ForEachSample(func(Sample) error {
		n++
		if n == 4 {
			return stop
		}
		return nil
	})
	c.Assert(err, Equals, stop)
	c.Assert(n, Equals, 4)
}

func (s *VolumeSuite) TestForEachSampleSparse(c *C) {
	ids := []dvid.ChunkPoint3d{{1, 0, 0}}
	f, err := NewSparse(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 1, 1}, ids)
	c.Assert(err, IsNil)
	var n int
	err = f.ForEachSample(func(s Sample) error {
		c.Assert(s.Chunk, Equals, dvid.ChunkPoint3d{1, 0, 0})
		n++
		return nil
	})
	c.Assert(err, IsNil)
	c.Assert(n, Equals, 8)
}

func (s *VolumeSuite) TestStats(c *C) {
	f, err := New(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)

	stats, err := f.Stats(context.Background())
	c.Assert(err, IsNil)
	c.Assert(stats.Samples, Equals, int64(64))
	c.Assert(stats.NonZero, Equals, int64(0))
	c.Assert(stats.Mean, Equals, float64(0))

	_, err = f.SetDensity(dvid.Point3d{1, 1, 1}, 1)
	c.Assert(err, IsNil)
	_, err = f.SetDensity(dvid.Point3d{3, 3, 3}, -1)
	c.Assert(err, IsNil)
	_, err = f.SetDensity(dvid.Point3d{2, 0, 1}, 0.5)
	c.Assert(err, IsNil)

	stats, err = f.Stats(context.Background())
	c.Assert(err, IsNil)
	c.Assert(stats.Samples, Equals, int64(64))
	c.Assert(stats.NonZero, Equals, int64(3))
	c.Assert(stats.Min, Equals, float32(-1))
	c.Assert(stats.Max, Equals, float32(1))
	c.Assert(stats.Mean, Equals, 0.5/64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Stats(ctx)
	c.Assert(err, Equals, context.Canceled)
}

func (s *VolumeSuite) TestTestVolume(c *C) {
	f := NewTestVolume()
	c.Assert(f.NumChunks(), Equals, 8)
	c.Assert(f.TotalPoints(), Equals, dvid.Point3d{4, 4, 4})

	inCube := func(p dvid.Point3d) float32 {
		for i := 0; i < 3; i++ {
			if p[i] < 1 || p[i] > 2 {
				return 0
			}
		}
		return 1
	}
	checkConsistent(c, f, inCube)

	v, err := f.DensityAt(dvid.Point3d{2, 1, 2})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(1))
	v, err = f.DensityAt(dvid.Point3d{0, 1, 2})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(0))
}

func (s *VolumeSuite) TestFillArrayBox(c *C) {
	ch := newChunk(dvid.ChunkPoint3d{}, dvid.Point3d{4, 4, 4})
	ch.fillArrayBox(dvid.Point3d{3, -1, 2}, dvid.Point3d{3, 2, 1}, 2)
	var n int
	for _, v := range ch.data {
		if v == 2 {
			n++
		}
	}
	// Clipped to x in [3,4), y in [0,1), z in [2,3).
	c.Assert(n, Equals, 1)
	c.Assert(ch.get(dvid.Point3d{3, 0, 2}), Equals, float32(2))
}
