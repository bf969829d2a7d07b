package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/blang/semver"

	"github.com/janelia-flyem/dvedit/dvid"
	"github.com/janelia-flyem/dvedit/volume"
)

// Version is the semantic version of the server and its web API.
var Version = semver.MustParse("0.3.0")

var (
	volumesMu sync.RWMutex
	volumes   = make(map[string]*volume.Field)

	httpServer *http.Server
)

// ErrVolumeExists is returned when adding a volume under a name already in use.
var ErrVolumeExists = errors.New("volume already exists")

// ErrNoVolume is returned when a named volume is not being served.
var ErrNoVolume = errors.New("no such volume")

// newVolume creates a field according to the given configuration.
func newVolume(vc volumeConfig) (*volume.Field, error) {
	if vc.TestPattern {
		return volume.NewTestVolume(), nil
	}
	if len(vc.Chunks) != 0 {
		return volume.NewSparse(vc.PointsPerChunk, vc.ChunkCount, vc.Chunks)
	}
	return volume.New(vc.PointsPerChunk, vc.ChunkCount)
}

// AddVolume serves the field under the given name.
func AddVolume(name string, f *volume.Field) error {
	if name == "" {
		return fmt.Errorf("volume name cannot be empty")
	}
	volumesMu.Lock()
	defer volumesMu.Unlock()
	if _, found := volumes[name]; found {
		return fmt.Errorf("volume %q: %w", name, ErrVolumeExists)
	}
	volumes[name] = f
	dvid.Infof("Serving volume %q (%s): %s chunks of %s points\n", name, f.UUID(), f.ChunkCount(), f.PointsPerChunk())
	return nil
}

// GetVolume returns the field served under the given name.
func GetVolume(name string) (*volume.Field, error) {
	volumesMu.RLock()
	defer volumesMu.RUnlock()
	f, found := volumes[name]
	if !found {
		return nil, fmt.Errorf("volume %q: %w", name, ErrNoVolume)
	}
	return f, nil
}

// VolumeNames returns the sorted names of all served volumes.
func VolumeNames() []string {
	volumesMu.RLock()
	defer volumesMu.RUnlock()
	names := make([]string, 0, len(volumes))
	for name := range volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetVolumes() {
	volumesMu.Lock()
	volumes = make(map[string]*volume.Field)
	volumesMu.Unlock()
}

// Initialize sets up logging, authorization, caches, kafka and the configured volumes.
// LoadConfig should be called first.
func Initialize() error {
	tc.Logging.SetLogger()
	if err := loadAuthFile(); err != nil {
		return fmt.Errorf("unable to load authorization file: %v", err)
	}
	if err := tc.Kafka.Initialize(Host()); err != nil {
		return fmt.Errorf("unable to initialize kafka: %v", err)
	}
	initSampleCache(CacheSize("samples"))
	for name, vc := range tc.Volume {
		f, err := newVolume(vc)
		if err != nil {
			return fmt.Errorf("bad configuration for volume %q: %w", name, err)
		}
		if err := AddVolume(name, f); err != nil {
			return err
		}
	}
	initRoutes()
	return nil
}

// Serve listens for HTTP requests until Shutdown is called.
func Serve() error {
	address := HTTPAddress()
	httpServer = &http.Server{
		Addr:        address,
		Handler:     webMux,
		ReadTimeout: 1 * time.Hour,
	}
	dvid.Infof("Web server listening at %s ...\n", address)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the web server, flushes kafka and closes the log.
func Shutdown() {
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			dvid.Errorf("Error shutting down web server: %v\n", err)
		}
		cancel()
	}
	closeEventClients()
	KafkaShutdown()
	dvid.Infof("Shutdown complete.\n")
	dvid.Shutdown()
}
