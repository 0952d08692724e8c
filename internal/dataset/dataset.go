// Package dataset holds the immutable mission table the router projects from.
package dataset

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
)

// ErrEmptyDataset is returned when a table would have no records.
var ErrEmptyDataset = errors.New("dataset has no missions")

// Table is a read-only, ordered set of mission records. It is safe for
// concurrent use because nothing mutates it after construction.
type Table struct {
	records []models.MissionRecord
}

var seed = []models.MissionRecord{
	{
		Mission:     "Apollo 11",
		Year:        1969,
		Status:      models.StatusCompleted,
		Description: "First crewed Moon landing; Armstrong and Aldrin walked on the Sea of Tranquility.",
	},
	{
		Mission:     "Mars Rover",
		Year:        2012,
		Status:      models.StatusOngoing,
		Description: "Curiosity rover exploring Gale Crater to assess past habitability of Mars.",
	},
	{
		Mission:     "Hubble Telescope",
		Year:        1990,
		Status:      models.StatusOngoing,
		Description: "Space telescope in low Earth orbit observing in ultraviolet, visible and near-infrared light.",
	},
	{
		Mission:     "Voyager",
		Year:        1977,
		Status:      models.StatusOngoing,
		Description: "Twin probes that toured the outer planets and now travel through interstellar space.",
	},
	{
		Mission:     "Cassini",
		Year:        1997,
		Status:      models.StatusCompleted,
		Description: "Orbiter that studied Saturn, its rings and moons before its 2017 Grand Finale.",
	},
}

// Default returns the built-in five-mission seed table.
func Default() *Table {
	t, _ := New(seed)
	return t
}

// New validates and copies records into a new table.
func New(records []models.MissionRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	for i, r := range records {
		if r.Mission == "" {
			return nil, fmt.Errorf("mission %d: name is required", i)
		}
		if r.Year <= 0 {
			return nil, fmt.Errorf("mission %q: invalid year %d", r.Mission, r.Year)
		}
		if !r.Status.Valid() {
			return nil, fmt.Errorf("mission %q: unknown status %q", r.Mission, r.Status)
		}
	}
	cp := make([]models.MissionRecord, len(records))
	copy(cp, records)
	return &Table{records: cp}, nil
}

type seedFile struct {
	Missions []models.MissionRecord `yaml:"missions"`
}

// LoadFile reads a YAML seed file with a top-level "missions" list.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	t, err := New(f.Missions)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return t, nil
}

// Records returns a copy of the records in dataset order.
func (t *Table) Records() []models.MissionRecord {
	cp := make([]models.MissionRecord, len(t.records))
	copy(cp, t.records)
	return cp
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Statuses returns the distinct statuses in first-seen order.
func (t *Table) Statuses() []models.Status {
	seen := make(map[models.Status]bool)
	var out []models.Status
	for _, r := range t.records {
		if !seen[r.Status] {
			seen[r.Status] = true
			out = append(out, r.Status)
		}
	}
	return out
}
