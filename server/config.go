package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/dvedit/dvid"
)

const (
	// DefaultWebAddress is the default URL of the web server
	DefaultWebAddress = "localhost:8000"

	// DefaultMaxSampleResponse is the largest number of samples returned by one request.
	DefaultMaxSampleResponse = 1000000
)

var (
	// DefaultHost is the default most understandable alias for this server.
	DefaultHost = "localhost"

	// the parsed TOML configuration data
	tc tomlConfig

	// the TOML config file location
	tcLocation string
)

func init() {
	if host, err := os.Hostname(); err == nil && host != "" {
		DefaultHost = host
	}
	tc.Server.MaxSampleResponse = DefaultMaxSampleResponse
}

type tomlConfig struct {
	Server  serverConfig
	Logging dvid.LogConfig
	Auth    authConfig
	Kafka   KafkaConfig
	Cache   map[string]sizeConfig
	Volume  map[string]volumeConfig
}

type serverConfig struct {
	HTTPAddress       string
	Host              string
	Note              string
	CorsDomains       []string
	MaxSampleResponse int64
}

type sizeConfig struct {
	Size int // in MB
}

// volumeConfig describes a density volume created at startup or through the API.
type volumeConfig struct {
	PointsPerChunk dvid.Point3d        `toml:"points_per_chunk" json:"points_per_chunk"`
	ChunkCount     dvid.Point3d        `toml:"chunk_count" json:"chunk_count"`
	Chunks         []dvid.ChunkPoint3d `toml:"chunks" json:"chunks"`
	TestPattern    bool                `toml:"test_pattern" json:"test_pattern"`
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *tomlConfig) convertPathsToAbsolute(configPath string) error {
	var err error

	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = dvid.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}

	// [auth].auth_file
	if c.Auth.AuthFile != "" {
		c.Auth.AuthFile, err = dvid.ConvertToAbsolute(c.Auth.AuthFile, configDir)
		if err != nil {
			return fmt.Errorf("error converting auth_file setting to absolute path")
		}
	}
	return nil
}

// LoadConfig loads server configuration from a TOML file.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("no server TOML configuration file provided")
	}
	var c tomlConfig
	c.Server.MaxSampleResponse = DefaultMaxSampleResponse
	if _, err := toml.DecodeFile(filename, &c); err != nil {
		return fmt.Errorf("could not decode TOML config: %v", err)
	}
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	tc = c
	tcLocation = filename
	dvid.Infof("Loaded configuration from %s with %d volumes\n", filename, len(tc.Volume))
	return nil
}

// Host returns the most understandable host alias.
func Host() string {
	if tc.Server.Host != "" {
		return tc.Server.Host
	}
	return DefaultHost
}

func ConfigLocation() string {
	return tcLocation
}

func Note() string {
	return tc.Server.Note
}

// HTTPAddress returns the address the web server listens on.
func HTTPAddress() string {
	if tc.Server.HTTPAddress == "" {
		return DefaultWebAddress
	}
	return tc.Server.HTTPAddress
}

// SetHTTPAddress overrides the configured web server address.
func SetHTTPAddress(address string) {
	tc.Server.HTTPAddress = address
}

// MaxSampleResponse returns the largest volume, in samples, whose samples are returned
// by a single request.
func MaxSampleResponse() int64 {
	return tc.Server.MaxSampleResponse
}

// CacheSize returns the number of bytes reserved for the given identifier.
// If unset, will return 0.
func CacheSize(id string) int {
	if tc.Cache == nil {
		return 0
	}
	setting, found := tc.Cache[id]
	if !found {
		return 0
	}
	return setting.Size * dvid.Mega
}

// KafkaAvailable returns true if kafka servers are configured.
func KafkaAvailable() bool {
	return len(tc.Kafka.Servers) != 0
}
