package volume

import (
	"errors"

	. "github.com/janelia-flyem/go/gocheck"

	"github.com/janelia-flyem/dvedit/dvid"
)

func (s *VolumeSuite) TestCornerOfEightChunks(c *C) {
	f, err := New(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)
	before := snapshot(f)

	written, err := f.SetDensity(dvid.Point3d{1, 1, 1}, 0.5)
	c.Assert(err, IsNil)
	c.Assert(written, Equals, 8)
	c.Assert(numChanged(before, snapshot(f)), Equals, 8)
	c.Assert(f.Version(), Equals, uint64(1))

	// Owner interior cell.
	v, err := f.Density(dvid.ChunkPoint3d{0, 0, 0}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(0.5))

	// Each neighbor holds the value in its low border slot along the offset axes.
	expected := map[dvid.ChunkPoint3d]dvid.Point3d{
		{1, 0, 0}: {0, 2, 2},
		{0, 1, 0}: {2, 0, 2},
		{0, 0, 1}: {2, 2, 0},
		{1, 1, 0}: {0, 0, 2},
		{1, 0, 1}: {0, 2, 0},
		{0, 1, 1}: {2, 0, 0},
		{1, 1, 1}: {0, 0, 0},
	}
	for id, arrayPt := range expected {
		v, err := f.Density(id, arrayPt)
		c.Assert(err, IsNil)
		c.Assert(v, Equals, float32(0.5), Commentf("chunk %s array point %s", id, arrayPt))
	}

	checkConsistent(c, f, func(p dvid.Point3d) float32 {
		if p == (dvid.Point3d{1, 1, 1}) {
			return 0.5
		}
		return 0
	})
}

func (s *VolumeSuite) TestInteriorPointTouchesOneCell(c *C) {
	f, err := New(dvid.Point3d{4, 4, 4}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)
	before := snapshot(f)

	written, err := f.SetDensity(dvid.Point3d{5, 2, 6}, 0.25)
	c.Assert(err, IsNil)
	c.Assert(written, Equals, 1)
	c.Assert(numChanged(before, snapshot(f)), Equals, 1)

	v, err := f.DensityAt(dvid.Point3d{5, 2, 6})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(0.25))
}

func (s *VolumeSuite) TestFaceAndEdgePoints(c *C) {
	f, err := New(dvid.Point3d{3, 3, 3}, dvid.Point3d{3, 3, 3})
	c.Assert(err, IsNil)

	// Face of chunk (1,1,1) toward -x.
	before := snapshot(f)
	written, err := f.SetDensity(dvid.Point3d{3, 4, 4}, 1)
	c.Assert(err, IsNil)
	c.Assert(written, Equals, 2)
	c.Assert(numChanged(before, snapshot(f)), Equals, 2)
	v, err := f.Density(dvid.ChunkPoint3d{0, 1, 1}, dvid.Point3d{4, 2, 2})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(1))

	// Edge of chunk (1,1,1) toward +y and -z.
	before = snapshot(f)
	written, err = f.SetDensity(dvid.Point3d{4, 5, 3}, 2)
	c.Assert(err, IsNil)
	c.Assert(written, Equals, 4)
	c.Assert(numChanged(before, snapshot(f)), Equals, 4)
	v, err = f.Density(dvid.ChunkPoint3d{1, 2, 0}, dvid.Point3d{2, 0, 4})
	c.Assert(err, IsNil)
	c.Assert(v, Equals, float32(2))
}

func (s *VolumeSuite) TestBorderConsistency(c *C) {
	configs := []struct {
		ppc, count dvid.Point3d
	}{
		{dvid.Point3d{3, 2, 4}, dvid.Point3d{3, 2, 2}},
		{dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 3, 2}},
		{dvid.Point3d{1, 2, 3}, dvid.Point3d{3, 2, 2}},
		{dvid.Point3d{1, 1, 1}, dvid.Point3d{3, 3, 3}},
	}
	for _, cfg := range configs {
		f, err := New(cfg.ppc, cfg.count)
		c.Assert(err, IsNil)
		total := f.TotalPoints()
		value := func(p dvid.Point3d) float32 {
			return float32(1 + p[0] + total[0]*(p[1]+total[1]*p[2]))
		}
		var p dvid.Point3d
		for p[2] = 0; p[2] < total[2]; p[2]++ {
			for p[1] = 0; p[1] < total[1]; p[1]++ {
				for p[0] = 0; p[0] < total[0]; p[0]++ {
					_, err := f.SetDensity(p, value(p))
					c.Assert(err, IsNil)
				}
			}
		}
		c.Assert(f.Version(), Equals, uint64(total.Prod()))
		checkConsistent(c, f, value)
	}
}

func (s *VolumeSuite) TestOverwriteKeepsConsistency(c *C) {
	f, err := New(dvid.Point3d{2, 3, 2}, dvid.Point3d{3, 2, 3})
	c.Assert(err, IsNil)
	expect := make(map[dvid.Point3d]float32)
	points := []dvid.Point3d{{1, 2, 1}, {2, 3, 2}, {1, 2, 1}, {5, 5, 5}, {0, 0, 0}, {2, 3, 2}, {3, 2, 4}}
	for i, p := range points {
		d := float32(i+1) / 8
		_, err := f.SetDensity(p, d)
		c.Assert(err, IsNil)
		expect[p] = d
	}
	checkConsistent(c, f, func(p dvid.Point3d) float32 {
		return expect[p]
	})
}

func (s *VolumeSuite) TestSetDensityIdempotent(c *C) {
	f, err := New(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)

	_, err = f.SetDensity(dvid.Point3d{2, 1, 2}, 0.75)
	c.Assert(err, IsNil)
	once := snapshot(f)

	_, err = f.SetDensity(dvid.Point3d{2, 1, 2}, 0.75)
	c.Assert(err, IsNil)
	c.Assert(snapshot(f), DeepEquals, once)
}

func (s *VolumeSuite) TestSparseBoundary(c *C) {
	ids := []dvid.ChunkPoint3d{{0, 0, 0}, {1, 0, 0}}
	f, err := NewSparse(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2}, ids)
	c.Assert(err, IsNil)
	c.Assert(f.NumChunks(), Equals, 2)
	c.Assert(f.HasChunk(dvid.ChunkPoint3d{0, 1, 0}), Equals, false)

	// Corner of (0,0,0): only the +x neighbor exists.
	before := snapshot(f)
	written, err := f.SetDensity(dvid.Point3d{1, 1, 1}, 0.5)
	c.Assert(err, IsNil)
	c.Assert(written, Equals, 2)
	after := snapshot(f)
	c.Assert(numChanged(before, after), Equals, 2)
	c.Assert(after, HasLen, 2)

	checkConsistent(c, f, func(p dvid.Point3d) float32 {
		if p == (dvid.Point3d{1, 1, 1}) {
			return 0.5
		}
		return 0
	})
}

func (s *VolumeSuite) TestUnknownOwnerWritesNothing(c *C) {
	ids := []dvid.ChunkPoint3d{{0, 0, 0}, {1, 0, 0}}
	f, err := NewSparse(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2}, ids)
	c.Assert(err, IsNil)
	before := snapshot(f)

	// Owned by missing chunk (0,1,0) but cached by (0,0,0) and (1,0,0).
	written, err := f.SetDensity(dvid.Point3d{1, 2, 1}, 0.5)
	c.Assert(errors.Is(err, ErrUnknownChunk), Equals, true)
	c.Assert(written, Equals, 0)
	c.Assert(numChanged(before, snapshot(f)), Equals, 0)
	c.Assert(f.Version(), Equals, uint64(0))

	_, err = f.Density(dvid.ChunkPoint3d{1, 1, 1}, dvid.Point3d{0, 0, 0})
	c.Assert(errors.Is(err, ErrUnknownChunk), Equals, true)
}

func (s *VolumeSuite) TestOutOfRange(c *C) {
	f, err := New(dvid.Point3d{2, 2, 2}, dvid.Point3d{2, 2, 2})
	c.Assert(err, IsNil)
	before := snapshot(f)

	for _, p := range []dvid.Point3d{{4, 0, 0}, {0, -1, 0}, {0, 0, 7}} {
		_, err := f.SetDensity(p, 1)
		c.Assert(errors.Is(err, ErrOutOfRange), Equals, true)
		_, err = f.DensityAt(p)
		c.Assert(errors.Is(err, ErrOutOfRange), Equals, true)
	}
	c.Assert(numChanged(before, snapshot(f)), Equals, 0)

	_, err = f.Density(dvid.ChunkPoint3d{0, 0, 0}, dvid.Point3d{4, 0, 0})
	c.Assert(errors.Is(err, ErrOutOfRange), Equals, true)
	_, err = f.Density(dvid.ChunkPoint3d{0, 0, 0}, dvid.Point3d{3, 3, 3})
	c.Assert(err, IsNil)
}
