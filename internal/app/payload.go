package app

import (
	"fmt"

	"github.com/samvad-hq/cabbage-miniapp/internal/fileformat"
)

// LoadPayload decodes a YAML or JSON request payload file into out.
func LoadPayload(path string, out any) error {
	if err := fileformat.ReadFile(path, out); err != nil {
		return fmt.Errorf("load payload: %w", err)
	}
	return nil
}
