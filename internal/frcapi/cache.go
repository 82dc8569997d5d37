package frcapi

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveCache writes the raw schedule response to path as a JSON snapshot.
func SaveCache(path string, resp *ScheduleResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// LoadCache reads a schedule snapshot previously written by SaveCache.
// A missing file is reported as an error wrapping os.ErrNotExist so
// callers can fall back to a fresh fetch.
func LoadCache(path string) (*ScheduleResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	var resp ScheduleResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding cache: %w", err)
	}
	return &resp, nil
}
