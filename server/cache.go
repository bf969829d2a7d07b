package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	"github.com/golang/snappy"
	"golang.org/x/sync/singleflight"

	"github.com/janelia-flyem/dvedit/dvid"
	"github.com/janelia-flyem/dvedit/volume"
)

var (
	// snappy-compressed sample payloads keyed by volume uuid and version
	sampleCache *freecache.Cache

	sampleGroup singleflight.Group
)

// initSampleCache sets up the sample payload cache if a size is configured.
func initSampleCache(numBytes int) {
	if numBytes <= 0 {
		sampleCache = nil
		return
	}
	sampleCache = freecache.NewCache(numBytes)
	dvid.Infof("Created freecache of ~ %d MB for sample payloads.\n", numBytes>>20)
}

type samplesPayload struct {
	UUID           string          `json:"uuid"`
	Version        uint64          `json:"version"`
	PointsPerChunk dvid.Point3d    `json:"points_per_chunk"`
	ChunkCount     dvid.Point3d    `json:"chunk_count"`
	Samples        []volume.Sample `json:"samples"`
}

func sampleKey(f *volume.Field, version uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d", f.UUID(), version))
}

// encodeSamples returns the JSON encoding of every sample of the field.
func encodeSamples(f *volume.Field) (payload []byte, version uint64, err error) {
	version = f.Version()
	p := samplesPayload{
		UUID:           f.UUID(),
		Version:        version,
		PointsPerChunk: f.PointsPerChunk(),
		ChunkCount:     f.ChunkCount(),
		Samples:        make([]volume.Sample, 0, f.NumChunks()*int(f.PointsPerChunk().Prod())),
	}
	err = f.ForEachSample(func(s volume.Sample) error {
		p.Samples = append(p.Samples, s)
		return nil
	})
	if err != nil {
		return
	}
	var buf bytes.Buffer
	if err = json.NewEncoder(&buf).Encode(p); err != nil {
		return
	}
	return buf.Bytes(), version, nil
}

// getSamples returns the JSON sample payload for the field's current version, using the
// cache when possible.  Concurrent requests for the same version are encoded once.
func getSamples(f *volume.Field) ([]byte, error) {
	key := sampleKey(f, f.Version())
	if sampleCache != nil {
		compressed, err := sampleCache.Get(key)
		if err != nil && err != freecache.ErrNotFound {
			return nil, err
		}
		if compressed != nil {
			return snappy.Decode(nil, compressed)
		}
	}
	v, err, _ := sampleGroup.Do(string(key), func() (interface{}, error) {
		payload, version, err := encodeSamples(f)
		if err != nil {
			return nil, err
		}
		// Only cache if no edit slipped in between reading the version and the samples.
		if sampleCache != nil && version == f.Version() {
			err := sampleCache.Set(sampleKey(f, version), snappy.Encode(nil, payload), 0)
			if err != nil {
				dvid.Debugf("Unable to cache %d byte sample payload for volume %s: %v\n", len(payload), f.UUID(), err)
			}
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
