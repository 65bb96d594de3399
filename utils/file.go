package utils

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadJSONFile unmarshals the file at path into out. The caller decides
// what a missing file means, so os.ReadFile errors pass through unwrapped
// for errors.Is checks against fs.ErrNotExist.
func ReadJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// WriteJSONFile writes in to path as indented JSON.
func WriteJSONFile(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
