// Package seed provides the sample listings and saved list the server starts
// with. The default data set is embedded; a JSON file may replace it.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stwalsh4118/homescout/api/internal/models"
)

//go:embed data/properties.json data/saved.json
var embedded embed.FS

// Data is a complete seed: listings plus the saved list referencing them.
type Data struct {
	Properties []models.Property      `json:"properties"`
	Saved      []models.SavedProperty `json:"saved"`
}

// Default returns the embedded sample data.
func Default() (*Data, error) {
	var data Data

	if err := decodeEmbedded("data/properties.json", &data.Properties); err != nil {
		return nil, err
	}
	if err := decodeEmbedded("data/saved.json", &data.Saved); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("embedded seed is invalid: %w", err)
	}
	return &data, nil
}

// Load returns the embedded data when path is empty, otherwise it reads a
// single JSON document of the form {"properties": [...], "saved": [...]}.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("seed file %s is invalid: %w", path, err)
	}
	return &data, nil
}

// Validate checks that ids are positive and unique and that required fields
// are present. Saved records may reference properties that do not exist.
func (d *Data) Validate() error {
	propertyIDs := make(map[int]bool, len(d.Properties))
	for i, p := range d.Properties {
		if p.ID <= 0 {
			return fmt.Errorf("property at index %d has non-positive id %d", i, p.ID)
		}
		if propertyIDs[p.ID] {
			return fmt.Errorf("duplicate property id %d", p.ID)
		}
		if p.Title == "" {
			return fmt.Errorf("property %d has no title", p.ID)
		}
		if p.Price != nil && *p.Price < 0 {
			return fmt.Errorf("property %d has negative price", p.ID)
		}
		propertyIDs[p.ID] = true
	}

	savedIDs := make(map[int]bool, len(d.Saved))
	for i, s := range d.Saved {
		if s.ID <= 0 {
			return fmt.Errorf("saved record at index %d has non-positive id %d", i, s.ID)
		}
		if savedIDs[s.ID] {
			return fmt.Errorf("duplicate saved record id %d", s.ID)
		}
		savedIDs[s.ID] = true
	}
	return nil
}

func decodeEmbedded(name string, v interface{}) error {
	raw, err := embedded.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read embedded %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse embedded %s: %w", name, err)
	}
	return nil
}
