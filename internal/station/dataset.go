package station

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

// Load reads a stations dataset (a JSON array) from path.
func Load(path string) ([]Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, derrors.WrapError(err, derrors.CategoryNotFound, "stations dataset not found").
				WithContext("path", path).Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read stations dataset").
			WithContext("path", path).Build()
	}
	return Decode(data)
}

// Decode parses a JSON array of stations.
func Decode(data []byte) ([]Station, error) {
	var stations []Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryDataset, "decode stations dataset").Fatal().Build()
	}
	return stations, nil
}

// Encode renders stations as 2-space indented JSON with a trailing newline.
// Non-ASCII text is written as-is.
func Encode(stations []Station) ([]byte, error) {
	if stations == nil {
		stations = []Station{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stations); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryDataset, "encode stations dataset").Build()
	}
	return buf.Bytes(), nil
}

// Save writes stations to path atomically (temp file in the same directory, then rename).
func Save(path string, stations []Station) error {
	data, err := Encode(stations)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create dataset directory").
			WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".stations-*.json")
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create temp dataset").Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write temp dataset").Build()
	}
	if err := tmp.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "close temp dataset").Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "replace stations dataset").
			WithContext("path", path).Build()
	}
	return nil
}
