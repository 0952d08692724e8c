package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/models"
)

func TestDefaultSeed(t *testing.T) {
	tbl := Default()
	if tbl.Len() != 5 {
		t.Fatalf("Len = %d, want 5", tbl.Len())
	}

	var years []int
	for _, r := range tbl.Records() {
		years = append(years, r.Year)
	}
	if diff := cmp.Diff([]int{1969, 2012, 1990, 1977, 1997}, years); diff != "" {
		t.Errorf("years mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordsReturnsCopy(t *testing.T) {
	tbl := Default()
	recs := tbl.Records()
	recs[0].Mission = "Tampered"

	if got := tbl.Records()[0].Mission; got != "Apollo 11" {
		t.Errorf("table mutated through Records(): got %q", got)
	}
}

func TestStatuses(t *testing.T) {
	got := Default().Statuses()
	want := []models.Status{models.StatusCompleted, models.StatusOngoing}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		records []models.MissionRecord
	}{
		{"empty", nil},
		{"missing name", []models.MissionRecord{{Year: 2000, Status: models.StatusOngoing}}},
		{"bad year", []models.MissionRecord{{Mission: "X", Status: models.StatusOngoing}}},
		{"bad status", []models.MissionRecord{{Mission: "X", Year: 2000, Status: "Lost"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.records); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if _, err := New(nil); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("New(nil) error = %v, want ErrEmptyDataset", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missions.yaml")
	content := `missions:
  - mission: Juno
    year: 2011
    status: Ongoing
    description: Jupiter orbiter
  - mission: Galileo
    year: 1989
    status: Completed
    description: Jupiter orbiter and probe
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := []models.MissionRecord{
		{Mission: "Juno", Year: 2011, Status: models.StatusOngoing, Description: "Jupiter orbiter"},
		{Mission: "Galileo", Year: 1989, Status: models.StatusCompleted, Description: "Jupiter orbiter and probe"},
	}
	if diff := cmp.Diff(want, tbl.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
