package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/wblakecaldwell/profiler"
	"github.com/zenazn/goji/web"
	"github.com/zenazn/goji/web/middleware"

	"github.com/janelia-flyem/dvedit/dvid"
	"github.com/janelia-flyem/dvedit/edit"
	"github.com/janelia-flyem/dvedit/volume"
)

// WebAPIPath is the prefix of all HTTP API calls.
const WebAPIPath = "/api/"

var webMux *web.Mux

func initRoutes() {
	webMux = web.New()
	webMux.Use(middleware.EnvInit)
	webMux.Use(middleware.RequestID)
	webMux.Use(middleware.Recoverer)
	webMux.Use(middleware.AutomaticOptions)
	webMux.Use(logRequests)
	if len(tc.Server.CorsDomains) != 0 {
		webMux.Use(cors.New(cors.Options{
			AllowedOrigins:   tc.Server.CorsDomains,
			AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler)
	}
	webMux.Use(isAuthorized)

	webMux.Get("/api/server/info", serverInfoHandler)
	webMux.Get("/api/volumes", volumesHandler)
	webMux.Post("/api/volume/:name", createVolumeHandler)
	webMux.Get("/api/volume/:name/info", volumeInfoHandler)
	webMux.Get("/api/volume/:name/samples", samplesHandler)
	webMux.Get("/api/volume/:name/stats", statsHandler)
	webMux.Get("/api/volume/:name/events", eventsHandler)
	webMux.Get("/api/volume/:name/density/:point", getDensityHandler)
	webMux.Post("/api/volume/:name/density", postDensityHandler)
	webMux.Get("/api/volume/:name/chunk/:chunk/:point", chunkDensityHandler)
	webMux.Post("/api/volume/:name/edit", editHandler)

	webMux.Get("/profiler/info.html", profiler.MemStatsHTMLHandler)
	webMux.Get("/profiler/info", profiler.ProfilingInfoJSONHandler)
	webMux.Get("/profiler/start", profiler.StartProfilingHandler)
	webMux.Get("/profiler/stop", profiler.StopProfilingHandler)

	webMux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, r, "no API endpoint %s %s", r.Method, r.URL.Path)
	})
}

// ServeSingleHTTP handles a single request, e.g., from a test.
func ServeSingleHTTP(w http.ResponseWriter, r *http.Request) {
	webMux.ServeHTTP(w, r)
}

func logRequests(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		timedLog := dvid.NewTimeLog()
		h.ServeHTTP(w, r)
		timedLog.Debugf("HTTP %s: %s", r.Method, r.URL)
	}
	return http.HandlerFunc(fn)
}

func httpError(w http.ResponseWriter, r *http.Request, code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if r != nil {
		msg = fmt.Sprintf("ERROR: %s (%s).", msg, r.URL.Path)
	}
	dvid.Errorf("%s\n", msg)
	http.Error(w, msg, code)
}

// BadRequest writes an error message and a 400 status code.
func BadRequest(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusBadRequest, format, args...)
}

// NotFound writes an error message and a 404 status code.
func NotFound(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusNotFound, format, args...)
}

// Unauthorized writes an error message and a 401 status code.
func Unauthorized(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusUnauthorized, format, args...)
}

// volumeError maps volume errors onto status codes.
func volumeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, volume.ErrUnknownChunk), errors.Is(err, ErrNoVolume):
		NotFound(w, r, "%v", err)
	case errors.Is(err, ErrVolumeExists):
		httpError(w, r, http.StatusConflict, "%v", err)
	case errors.Is(err, volume.ErrOutOfRange), errors.Is(err, volume.ErrBadSize):
		BadRequest(w, r, "%v", err)
	default:
		httpError(w, r, http.StatusInternalServerError, "%v", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		dvid.Errorf("unable to write JSON response for %s: %v\n", r.URL.Path, err)
	}
}

type volumeInfo struct {
	Name                          string       `json:"name"`
	UUID                          string       `json:"uuid"`
	Version                       uint64       `json:"version"`
	PointsPerChunk                dvid.Point3d `json:"points_per_chunk"`
	PointsPerChunkIncludingBorder dvid.Point3d `json:"points_per_chunk_including_border"`
	ChunkCount                    dvid.Point3d `json:"chunk_count"`
	TotalPoints                   dvid.Point3d `json:"total_points"`
	NumChunks                     int          `json:"num_chunks"`
	MemoryBytes                   int          `json:"memory_bytes"`
	Memory                        string       `json:"memory"`
}

func getVolumeInfo(name string, f *volume.Field) volumeInfo {
	memBytes := f.MemoryBytes()
	return volumeInfo{
		Name:                          name,
		UUID:                          f.UUID(),
		Version:                       f.Version(),
		PointsPerChunk:                f.PointsPerChunk(),
		PointsPerChunkIncludingBorder: f.PointsPerChunkIncludingBorder(),
		ChunkCount:                    f.ChunkCount(),
		TotalPoints:                   f.TotalPoints(),
		NumChunks:                     f.NumChunks(),
		MemoryBytes:                   memBytes,
		Memory:                        humanize.Bytes(uint64(memBytes)),
	}
}

// GET /api/server/info
func serverInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]interface{}{
		"version": Version.String(),
		"host":    Host(),
		"note":    Note(),
		"volumes": VolumeNames(),
		"kafka":   KafkaAvailable(),
	})
}

// GET /api/volumes
func volumesHandler(w http.ResponseWriter, r *http.Request) {
	infos := []volumeInfo{}
	for _, name := range VolumeNames() {
		f, err := GetVolume(name)
		if err != nil {
			continue
		}
		infos = append(infos, getVolumeInfo(name, f))
	}
	writeJSON(w, r, infos)
}

// POST /api/volume/:name
func createVolumeHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	name := c.URLParams["name"]
	var vc volumeConfig
	if err := decodeValidated(r, volumeSchema, &vc); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	f, err := newVolume(vc)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	if err := AddVolume(name, f); err != nil {
		volumeError(w, r, err)
		return
	}
	LogActivityToKafka(map[string]interface{}{
		"Action": "create-volume",
		"Volume": name,
		"UUID":   f.UUID(),
		"User":   c.Env["user"],
	})
	writeJSON(w, r, getVolumeInfo(name, f))
}

// GET /api/volume/:name/info
func volumeInfoHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	name := c.URLParams["name"]
	f, err := GetVolume(name)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	writeJSON(w, r, getVolumeInfo(name, f))
}

// GET /api/volume/:name/samples
func samplesHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	f, err := GetVolume(c.URLParams["name"])
	if err != nil {
		volumeError(w, r, err)
		return
	}
	numSamples := int64(f.NumChunks()) * f.PointsPerChunk().Prod()
	if numSamples > MaxSampleResponse() {
		BadRequest(w, r, "volume has %d samples, more than the %d allowed per request", numSamples, MaxSampleResponse())
		return
	}
	payload, err := getSamples(f)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(payload); err != nil {
			dvid.Errorf("unable to write samples for %s: %v\n", r.URL.Path, err)
		}
	})).ServeHTTP(w, r)
}

// GET /api/volume/:name/stats
func statsHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	f, err := GetVolume(c.URLParams["name"])
	if err != nil {
		volumeError(w, r, err)
		return
	}
	stats, err := f.Stats(r.Context())
	if err != nil {
		volumeError(w, r, err)
		return
	}
	writeJSON(w, r, stats)
}

// GET /api/volume/:name/density/:point where point is "x_y_z"
func getDensityHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	f, err := GetVolume(c.URLParams["name"])
	if err != nil {
		volumeError(w, r, err)
		return
	}
	p, err := dvid.StringToPoint3d(c.URLParams["point"], "_")
	if err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	density, err := f.DensityAt(p)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]interface{}{
		"point":   p,
		"density": density,
		"version": f.Version(),
	})
}

// GET /api/volume/:name/chunk/:chunk/:point where chunk and array point are "x_y_z"
func chunkDensityHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	f, err := GetVolume(c.URLParams["name"])
	if err != nil {
		volumeError(w, r, err)
		return
	}
	id, err := dvid.StringToChunkPoint3d(c.URLParams["chunk"], "_")
	if err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	arrayPt, err := dvid.StringToPoint3d(c.URLParams["point"], "_")
	if err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	density, err := f.Density(id, arrayPt)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]interface{}{
		"chunk":   id,
		"point":   arrayPt,
		"density": density,
	})
}

type densityRequest struct {
	Point   dvid.Point3d `json:"point"`
	Density float32      `json:"density"`
}

// POST /api/volume/:name/density
func postDensityHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	name := c.URLParams["name"]
	f, err := GetVolume(name)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	var req densityRequest
	if err := decodeValidated(r, densitySchema, &req); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	cells, err := f.SetDensity(req.Point, req.Density)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	result := edit.Result{Points: 1, Cells: cells}
	recordEdit(c, name, f, "set-density", req, result)
	writeJSON(w, r, result)
}

type editRequest struct {
	Point   dvid.Point3d `json:"point"`
	Size    dvid.Point3d `json:"size"`
	Density float32      `json:"density"`
}

// POST /api/volume/:name/edit
func editHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	name := c.URLParams["name"]
	f, err := GetVolume(name)
	if err != nil {
		volumeError(w, r, err)
		return
	}
	var req editRequest
	if err := decodeValidated(r, editSchema, &req); err != nil {
		BadRequest(w, r, "%v", err)
		return
	}
	result, err := edit.Apply(f, edit.Box{Point: req.Point, Size: req.Size, Density: req.Density})
	if err != nil {
		volumeError(w, r, err)
		return
	}
	if result.Points > 0 {
		recordEdit(c, name, f, "edit", req, result)
	}
	writeJSON(w, r, result)
}

// recordEdit notifies subscribers and logs the edit activity.
func recordEdit(c web.C, name string, f *volume.Field, action string, req interface{}, result edit.Result) {
	version := f.Version()
	notifyEdit(EditEvent{Volume: name, Version: version, Points: result.Points})
	LogActivityToKafka(map[string]interface{}{
		"Action":  action,
		"Volume":  name,
		"UUID":    f.UUID(),
		"Version": version,
		"Request": req,
		"Points":  result.Points,
		"Cells":   result.Cells,
		"User":    c.Env["user"],
	})
	dvid.Debugf("%s on volume %q -> version %d (%d points, %d cells)\n", action, name, version, result.Points, result.Cells)
}
