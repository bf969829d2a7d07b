package dvid

import (
	"path/filepath"
)

const (
	Kilo = 1 << 10
	Mega = 1 << 20
)

// ConvertToAbsolute returns an absolute path for a given path, where any relative path
// is taken to be relative to the given directory.
func ConvertToAbsolute(path, relativeTo string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(relativeTo, path))
}
