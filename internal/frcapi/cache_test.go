package frcapi

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule_cache.json")
	resp := &ScheduleResponse{
		Schedule: []ScheduledMatch{
			{
				MatchNumber:     3,
				StartTime:       "2024-03-01T10:30:00",
				TournamentLevel: "Practice",
				Teams: []MatchTeam{
					{TeamNumber: 1234, Station: "Red 1"},
					{TeamNumber: 5678, Station: "Blue 1"},
				},
			},
		},
	}

	if err := SaveCache(path, resp); err != nil {
		t.Fatalf("SaveCache() error: %v", err)
	}

	loaded, err := LoadCache(path)
	if err != nil {
		t.Fatalf("LoadCache() error: %v", err)
	}
	if len(loaded.Schedule) != 1 {
		t.Fatalf("loaded %d matches, want 1", len(loaded.Schedule))
	}
	m := loaded.Schedule[0]
	if m.MatchNumber != 3 || m.StartTime != "2024-03-01T10:30:00" {
		t.Errorf("match = %+v", m)
	}
	if len(m.Teams) != 2 || m.Teams[1].TeamNumber != 5678 {
		t.Errorf("teams = %+v", m.Teams)
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	_, err := LoadCache(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("LoadCache() succeeded, want error")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want it to wrap fs.ErrNotExist", err)
	}
}
