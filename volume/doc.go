/*
Package volume implements an editable, chunked scalar density field.

Samples are stored per chunk in dense float32 arrays that carry a one-sample border on
every side of every axis.  A sample lying on a chunk boundary is therefore physically
duplicated in the owning chunk's interior and in the border caches of up to seven
neighboring chunks (three faces, three edges, one corner).  SetDensity keeps all of those
copies equal, so each chunk can be processed on its own with its neighbors' edge values
at hand.

Three coordinate systems are used:

	volume point  global sample lattice, [0, TotalPoints)
	local point   sample within its owning chunk, [0, PointsPerChunk)
	array point   index into a chunk array, local point + (1,1,1)

Chunks are allocated once when the field is created and are never removed.  Chunks
absent from a sparse field simply do not exist: writes whose owner is missing fail with
ErrUnknownChunk, while missing neighbors are skipped.
*/
package volume
