// Package captures keeps a small JSON journal of captured photos alongside
// the images themselves, so the CLI can answer "what did I shoot and why"
// without scraping directory listings.
package captures

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const journalName = "captures.json"

// Journal manages the capture index for one output directory.
type Journal struct {
	dir       string
	indexPath string
}

// Record is one captured photo.
type Record struct {
	File      string    `json:"file"`
	Trigger   string    `json:"trigger,omitempty"`
	Profile   string    `json:"profile,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type index struct {
	Captures  []Record  `json:"captures"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Open opens or creates a journal in the given output directory.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &Journal{
		dir:       dir,
		indexPath: filepath.Join(dir, journalName),
	}, nil
}

func (j *Journal) load() (*index, error) {
	data, err := os.ReadFile(j.indexPath)
	if os.IsNotExist(err) {
		return &index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read capture index: %w", err)
	}

	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse capture index: %w", err)
	}
	return &idx, nil
}

func (j *Journal) save(idx *index) error {
	idx.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.indexPath, data, 0o644)
}

// Append adds a record to the journal.
func (j *Journal) Append(rec Record) error {
	idx, err := j.load()
	if err != nil {
		return err
	}
	idx.Captures = append(idx.Captures, rec)
	return j.save(idx)
}

// List returns records newest first. A limit of 0 returns everything.
func (j *Journal) List(limit int) ([]Record, error) {
	idx, err := j.load()
	if err != nil {
		return nil, err
	}

	recs := make([]Record, len(idx.Captures))
	copy(recs, idx.Captures)
	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].Timestamp.After(recs[b].Timestamp)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
