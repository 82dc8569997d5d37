package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frc4915/scoutshift/internal/frcapi"
)

// startTimeLayout is the timestamp format used by the FIRST Events API.
const startTimeLayout = "2006-01-02T15:04:05"

// Station pairs an alliance station label with the team assigned to it.
type Station struct {
	Label string
	Team  int
}

// Match is one normalized match from the event schedule. Immutable once
// built.
type Match struct {
	Number int
	Time   time.Time
	Teams  []Station
}

// Day returns the match's day marker (calendar date).
func (m Match) Day() string {
	return m.Time.Format("2006-01-02")
}

// TeamNumbers returns the competing team numbers in station order.
func (m Match) TeamNumbers() []int {
	nums := make([]int, len(m.Teams))
	for i, s := range m.Teams {
		nums[i] = s.Team
	}
	return nums
}

// Build normalizes a raw schedule response into the match catalog,
// keeping only matches at the given tournament level and ordering them
// chronologically. An empty schedule yields an empty catalog.
func Build(resp *frcapi.ScheduleResponse, level string) ([]Match, error) {
	if resp == nil {
		return nil, nil
	}

	var matches []Match
	for _, raw := range resp.Schedule {
		if !strings.EqualFold(raw.TournamentLevel, level) {
			continue
		}

		t, err := time.Parse(startTimeLayout, raw.StartTime)
		if err != nil {
			return nil, fmt.Errorf("match %d: invalid start time %q: %w", raw.MatchNumber, raw.StartTime, err)
		}

		m := Match{Number: raw.MatchNumber, Time: t}
		seen := make(map[int]bool)
		for _, mt := range raw.Teams {
			if seen[mt.TeamNumber] {
				return nil, fmt.Errorf("match %d: team %d appears twice", raw.MatchNumber, mt.TeamNumber)
			}
			seen[mt.TeamNumber] = true
			m.Teams = append(m.Teams, Station{Label: mt.Station, Team: mt.TeamNumber})
		}
		matches = append(matches, m)
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Time.Equal(matches[j].Time) {
			return matches[i].Time.Before(matches[j].Time)
		}
		return matches[i].Number < matches[j].Number
	})

	return matches, nil
}

// EligibleTeams returns the distinct teams appearing across the catalog,
// in first-appearance order, minus the exclusion set. Empty input yields
// an empty registry.
func EligibleTeams(matches []Match, excluded map[int]bool) []int {
	seen := make(map[int]bool)
	var teams []int
	for _, m := range matches {
		for _, s := range m.Teams {
			if excluded[s.Team] || seen[s.Team] {
				continue
			}
			seen[s.Team] = true
			teams = append(teams, s.Team)
		}
	}
	return teams
}

// StationLabels returns the distinct station labels in the order they
// first appear across the catalog, for use as report column headers.
func StationLabels(matches []Match) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, m := range matches {
		for _, s := range m.Teams {
			if seen[s.Label] {
				continue
			}
			seen[s.Label] = true
			labels = append(labels, s.Label)
		}
	}
	return labels
}
