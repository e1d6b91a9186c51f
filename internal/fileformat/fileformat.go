// Package fileformat decodes the YAML and JSON files shopctl reads: request
// payloads and the publishers file.
package fileformat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type decoder struct {
	name string
	exts []string
	fn   func([]byte, any) error
}

var decoders = []decoder{
	{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
	{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
}

// ReadFile decodes the file at path into out. The extension picks the
// decoder; files without one are tried as JSON then YAML.
func ReadFile(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw, filepath.Ext(path), out)
}

// Decode decodes data with the decoder registered for ext.
func Decode(data []byte, ext string, out any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && !slices.Contains(d.exts, ext) {
			continue
		}
		err := d.fn(data, out)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("file extension %q not recognized (expected .json, .yaml or .yml)", ext)
	}
	return errors.Join(errs...)
}
