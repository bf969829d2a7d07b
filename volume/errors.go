package volume

import "errors"

var (
	// ErrUnknownChunk is returned when an operation targets a chunk that was never allocated.
	ErrUnknownChunk = errors.New("unknown chunk")

	// ErrOutOfRange is returned for points outside the volume or chunk array extents.
	ErrOutOfRange = errors.New("point out of range")

	// ErrBadSize is returned when volume dimensions or chunk lists are invalid.
	ErrBadSize = errors.New("bad volume size")
)
