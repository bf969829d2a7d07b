package dvid

import (
	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestPoint3d(c *C) {
	a := Point3d{10, 21, 837821}
	b := Point3d{78312, -200, 40123}

	c.Assert(a.Add(b), Equals, Point3d{a[0] + b[0], a[1] + b[1], a[2] + b[2]})
	c.Assert(a.Sub(b), Equals, Point3d{a[0] - b[0], a[1] - b[1], a[2] - b[2]})
	c.Assert(a.String(), Equals, "(10,21,837821)")
	c.Assert(a.AddScalar(10), Equals, Point3d{20, 31, 837831})
	c.Assert(Point3d{2, 3, 4}.Mult(Point3d{5, 6, 7}), Equals, Point3d{10, 18, 28})
	c.Assert(Point3d{2, 3, 4}.Prod(), Equals, int64(24))

	c.Assert(Point3d{1, 1, 1}.AllPositive(), Equals, true)
	c.Assert(Point3d{1, 0, 1}.AllPositive(), Equals, false)

	size := Point3d{4, 4, 4}
	c.Assert(Point3d{0, 3, 2}.Inside(size), Equals, true)
	c.Assert(Point3d{0, 4, 2}.Inside(size), Equals, false)
	c.Assert(Point3d{-1, 0, 0}.Inside(size), Equals, false)
}

func (s *DataSuite) TestChunking(c *C) {
	d := Point3d{111, 213, 678}
	size := Point3d{20, 30, 40}
	c.Assert(d.Chunk(size), Equals, ChunkPoint3d{5, 7, 16})
	c.Assert(d.PointInChunk(size), Equals, Point3d{11, 3, 38})

	d = Point3d{-1, -30, -41}
	c.Assert(d.Chunk(size), Equals, ChunkPoint3d{-1, -1, -2})
	c.Assert(d.PointInChunk(size), Equals, Point3d{19, 0, 39})

	chunk := ChunkPoint3d{1, 2, 3}
	c.Assert(chunk.MinPoint(size), Equals, Point3d{20, 60, 120})
	c.Assert(chunk.Add(Point3d{-1, 0, 1}), Equals, ChunkPoint3d{0, 2, 4})
	c.Assert(chunk.String(), Equals, "(1,2,3)")
}

func (s *DataSuite) TestStringToPoint3d(c *C) {
	p, err := StringToPoint3d("10_-20_30", "_")
	c.Assert(err, IsNil)
	c.Assert(p, Equals, Point3d{10, -20, 30})

	_, err = StringToPoint3d("10_20", "_")
	c.Assert(err, NotNil)

	_, err = StringToPoint3d("10_a_30", "_")
	c.Assert(err, NotNil)

	chunk, err := StringToChunkPoint3d("1,0,1", ",")
	c.Assert(err, IsNil)
	c.Assert(chunk, Equals, ChunkPoint3d{1, 0, 1})
}
