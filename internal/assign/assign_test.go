package assign

import (
	"reflect"
	"testing"
	"time"

	"github.com/frc4915/scoutshift/internal/catalog"
)

var stationLabels = []string{"Red 1", "Red 2", "Red 3", "Blue 1", "Blue 2", "Blue 3"}

func match(number int, start time.Time, teams ...int) catalog.Match {
	m := catalog.Match{Number: number, Time: start}
	for i, t := range teams {
		m.Teams = append(m.Teams, catalog.Station{Label: stationLabels[i], Team: t})
	}
	return m
}

func at(minutes int) time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

// hasShortfall reports whether a shortfall is recorded for a team or member.
func hasShortfall(r *Result, kind ShortfallKind, team int, member string) bool {
	for _, s := range r.Shortfalls {
		if s.Kind != kind {
			continue
		}
		if kind == TeamShortfall && s.Team == team {
			return true
		}
		if kind == MemberShortfall && s.Member == member {
			return true
		}
	}
	return false
}

func assertInvariants(t *testing.T, r *Result, excluded map[int]bool) {
	t.Helper()

	type matchMemberKey struct {
		match  int
		member string
	}
	seen := make(map[matchMemberKey]int)
	for _, e := range r.Entries {
		seen[matchMemberKey{e.Match, e.Member}]++
		if excluded[e.Team] {
			t.Errorf("excluded team %d assigned to %s in match %d", e.Team, e.Member, e.Match)
		}
	}
	for k, count := range seen {
		if count > 1 {
			t.Errorf("%s scouts %d teams in match %d", k.member, count, k.match)
		}
	}
}

func TestMinimalScenario(t *testing.T) {
	// 2 matches, teams {1,2,3} and {1,4,5}, excluded={5}, members=[A,B],
	// floors of 1.
	matches := []catalog.Match{
		match(1, at(0), 1, 2, 3),
		match(2, at(10), 1, 4, 5),
	}
	excluded := map[int]bool{5: true}
	eligible := catalog.EligibleTeams(matches, excluded)
	members := []string{"A", "B"}

	result := Run(matches, eligible, members, Options{
		MinMembersPerTeam: 1,
		MinTeamsPerMember: 1,
		Excluded:          excluded,
	})

	assertInvariants(t, result, excluded)

	t.Run("every eligible team covered", func(t *testing.T) {
		covered := make(map[int]bool)
		for _, e := range result.Entries {
			covered[e.Team] = true
		}
		for _, team := range []int{1, 2, 3, 4} {
			if !covered[team] {
				t.Errorf("team %d has no assigned member", team)
			}
		}
	})

	t.Run("every member has a team", func(t *testing.T) {
		for _, member := range members {
			if len(result.Teams(member)) < 1 {
				t.Errorf("%s has no assigned teams", member)
			}
		}
	})

	t.Run("no shortfalls", func(t *testing.T) {
		if len(result.Shortfalls) != 0 {
			t.Errorf("shortfalls = %v, want none", result.Shortfalls)
		}
	})
}

func TestEmptyRoster(t *testing.T) {
	matches := []catalog.Match{match(1, at(0), 1, 2, 3)}
	result := Run(matches, []int{1, 2, 3}, nil, Options{
		MinMembersPerTeam: 1,
		MinTeamsPerMember: 1,
	})

	if len(result.Entries) != 0 {
		t.Errorf("entries = %v, want none", result.Entries)
	}
	found := false
	for _, d := range result.Diagnostics {
		if d == "no members available" {
			found = true
		}
	}
	if !found {
		t.Errorf("diagnostics = %v, want a 'no members available' entry", result.Diagnostics)
	}
}

func TestDeterminism(t *testing.T) {
	matches := []catalog.Match{
		match(1, at(0), 101, 102, 103, 104, 105, 106),
		match(2, at(10), 107, 108, 109, 101, 110, 111),
		match(3, at(20), 112, 103, 105, 107, 102, 108),
		match(4, at(30), 104, 106, 110, 111, 112, 109),
		match(5, at(40), 101, 103, 107, 110, 104, 108),
	}
	excluded := map[int]bool{105: true}
	eligible := catalog.EligibleTeams(matches, excluded)
	members := []string{"A", "B", "C", "D", "E"}
	opts := Options{MinMembersPerTeam: 2, MinTeamsPerMember: 3, Excluded: excluded}

	first := Run(matches, eligible, members, opts)
	second := Run(matches, eligible, members, opts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs on identical inputs differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCoverageFloors(t *testing.T) {
	matches := []catalog.Match{
		match(1, at(0), 101, 102, 103, 104, 105, 106),
		match(2, at(10), 107, 108, 109, 101, 110, 111),
		match(3, at(20), 112, 103, 105, 107, 102, 108),
		match(4, at(30), 104, 106, 110, 111, 112, 109),
		match(5, at(40), 101, 103, 107, 110, 104, 108),
		match(6, at(50), 102, 105, 109, 112, 106, 111),
	}
	excluded := map[int]bool{}
	eligible := catalog.EligibleTeams(matches, excluded)
	members := []string{"A", "B", "C", "D", "E", "F"}

	result := Run(matches, eligible, members, Options{
		MinMembersPerTeam: 2,
		MinTeamsPerMember: 2,
		Excluded:          excluded,
	})

	assertInvariants(t, result, excluded)

	t.Run("team floor met or shortfall reported", func(t *testing.T) {
		teamMembers := make(map[int]map[string]bool)
		for _, e := range result.Entries {
			if teamMembers[e.Team] == nil {
				teamMembers[e.Team] = make(map[string]bool)
			}
			teamMembers[e.Team][e.Member] = true
		}
		for _, team := range eligible {
			if len(teamMembers[team]) < 2 && !hasShortfall(result, TeamShortfall, team, "") {
				t.Errorf("team %d has %d distinct members and no shortfall", team, len(teamMembers[team]))
			}
		}
	})

	t.Run("member floor met or shortfall reported", func(t *testing.T) {
		for _, member := range members {
			if len(result.Teams(member)) < 2 && !hasShortfall(result, MemberShortfall, 0, member) {
				t.Errorf("%s has %d distinct teams and no shortfall", member, len(result.Teams(member)))
			}
		}
	})
}

func TestMemberRepairFillsOpenSlots(t *testing.T) {
	// With floors of 1 the distribution pass covers teams 10 and 20 in the
	// first match and leaves the second match open, so C's floor is only
	// reachable through the member repair pass.
	matches := []catalog.Match{
		match(1, at(0), 10, 20),
		match(2, at(10), 10, 20),
	}
	eligible := []int{10, 20}
	members := []string{"A", "B", "C"}

	result := Run(matches, eligible, members, Options{
		MinMembersPerTeam: 1,
		MinTeamsPerMember: 1,
	})

	assertInvariants(t, result, nil)
	if len(result.Teams("C")) < 1 {
		t.Errorf("C has no assigned teams; entries = %v", result.Entries)
	}
	if len(result.Shortfalls) != 0 {
		t.Errorf("shortfalls = %v, want none", result.Shortfalls)
	}
}

func TestUnreachableFloorsAreShortfalls(t *testing.T) {
	// Team 30 appears once, so its ceiling of distinct members is 1.
	matches := []catalog.Match{
		match(1, at(0), 10, 20),
		match(2, at(10), 10, 30),
	}
	eligible := []int{10, 20, 30}
	members := []string{"A", "B"}

	result := Run(matches, eligible, members, Options{
		MinMembersPerTeam: 2,
		MinTeamsPerMember: 1,
	})

	assertInvariants(t, result, nil)
	if !hasShortfall(result, TeamShortfall, 20, "") && !hasShortfall(result, TeamShortfall, 30, "") {
		t.Errorf("shortfalls = %v, want at least one single-appearance team reported", result.Shortfalls)
	}
}

func TestPurgeDropsExcludedEntries(t *testing.T) {
	// The registry normally never contains excluded teams; feed one in
	// anyway and check the final pass removes it.
	matches := []catalog.Match{match(1, at(0), 10, 20)}
	result := Run(matches, []int{10, 20}, []string{"A", "B"}, Options{
		MinMembersPerTeam: 1,
		MinTeamsPerMember: 1,
		Excluded:          map[int]bool{20: true},
	})

	for _, e := range result.Entries {
		if e.Team == 20 {
			t.Errorf("excluded team 20 survived the purge: %+v", e)
		}
	}
}

func TestEntriesOrderedByMatchAndStation(t *testing.T) {
	matches := []catalog.Match{
		match(1, at(0), 1, 2, 3),
		match(2, at(10), 1, 4, 5),
	}
	eligible := catalog.EligibleTeams(matches, nil)
	result := Run(matches, eligible, []string{"A", "B", "C", "D", "E"}, Options{
		MinMembersPerTeam: 1,
		MinTeamsPerMember: 1,
	})

	lastMatch, lastStation := 0, -1
	stationOf := map[int]map[int]int{
		1: {1: 0, 2: 1, 3: 2},
		2: {1: 0, 4: 1, 5: 2},
	}
	for _, e := range result.Entries {
		if e.Match < lastMatch {
			t.Fatalf("entries out of match order: %v", result.Entries)
		}
		if e.Match > lastMatch {
			lastMatch, lastStation = e.Match, -1
		}
		if s := stationOf[e.Match][e.Team]; s <= lastStation {
			t.Fatalf("entries out of station order in match %d: %v", e.Match, result.Entries)
		} else {
			lastStation = s
		}
	}
}
