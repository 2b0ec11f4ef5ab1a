// Package fallback serves the bundled, read-only channel classification
// dataset. It is the lowest-priority resolution tier.
package fallback

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/icar1an/serenity/internal/model"
)

//go:embed channelData.json
var bundled []byte

// Dataset is an immutable identifier -> classification mapping, loaded once.
type Dataset struct {
	entries map[string]model.Classification
}

// Load parses the bundled dataset. Entries with unrecognized classification
// strings are skipped with a warning rather than failing the load.
func Load() (*Dataset, error) {
	return parse(bundled)
}

// LoadFile loads a dataset from disk, for deployments shipping a newer
// snapshot than the embedded one.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fallback: read dataset: %w", err)
	}
	return parse(data)
}

// New builds a dataset from an in-memory map (used in tests).
func New(raw map[string]string) *Dataset {
	ds, _ := fromRaw(raw)
	return ds
}

func parse(data []byte) (*Dataset, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fallback: parse dataset: %w", err)
	}
	ds, skipped := fromRaw(raw)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("fallback: dataset entries with unknown classification ignored")
	}
	log.Info().Int("channels", len(ds.entries)).Msg("fallback: dataset loaded")
	return ds, nil
}

func fromRaw(raw map[string]string) (*Dataset, int) {
	entries := make(map[string]model.Classification, len(raw))
	skipped := 0
	for key, val := range raw {
		cls, ok := model.ParseClassification(val)
		if !ok {
			skipped++
			continue
		}
		entries[key] = cls
	}
	return &Dataset{entries: entries}, skipped
}

// Lookup finds a classification for a normalized identifier: exact match
// first, then a case-insensitive scan (the dataset may carry mixed-case
// handles).
func (d *Dataset) Lookup(normalized string) (model.Classification, bool) {
	if normalized == "" {
		return model.Unknown, false
	}

	if cls, ok := d.entries[normalized]; ok {
		return cls, true
	}

	for key, cls := range d.entries {
		if strings.ToLower(key) == normalized {
			return cls, true
		}
	}

	return model.Unknown, false
}

// Len reports the number of usable entries.
func (d *Dataset) Len() int {
	return len(d.entries)
}
