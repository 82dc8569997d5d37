package assign

import (
	"fmt"
	"sort"

	"github.com/frc4915/scoutshift/internal/catalog"
)

// Entry maps one (match, team) pair to the member scouting it.
type Entry struct {
	Match  int // match number
	Team   int
	Member string
}

// ShortfallKind says which coverage floor a shortfall is about.
type ShortfallKind string

const (
	TeamShortfall   ShortfallKind = "team"
	MemberShortfall ShortfallKind = "member"
)

// Shortfall reports an eligible team or a member that could not reach its
// configured minimum. Shortfalls are diagnostics, never errors: the
// minimums are best-effort targets for a feasibility-constrained
// heuristic.
type Shortfall struct {
	Kind   ShortfallKind
	Team   int    // set when Kind == TeamShortfall
	Member string // set when Kind == MemberShortfall
	Want   int
	Got    int
}

func (s Shortfall) String() string {
	if s.Kind == TeamShortfall {
		return fmt.Sprintf("team %d is scouted by %d members (want %d)", s.Team, s.Got, s.Want)
	}
	return fmt.Sprintf("%s scouts %d teams (want %d)", s.Member, s.Got, s.Want)
}

// Result is the output of the assignment engine.
type Result struct {
	Entries     []Entry
	Shortfalls  []Shortfall
	Diagnostics []string
}

// Member answers, for any match and team, which member (if any) is
// assigned.
func (r *Result) Member(match, team int) (string, bool) {
	for _, e := range r.Entries {
		if e.Match == match && e.Team == team {
			return e.Member, true
		}
	}
	return "", false
}

// Duties returns the ordered list of (match, team) duties for a member.
func (r *Result) Duties(member string) []Entry {
	var duties []Entry
	for _, e := range r.Entries {
		if e.Member == member {
			duties = append(duties, e)
		}
	}
	return duties
}

// Teams returns the distinct teams a member scouts, in duty order.
func (r *Result) Teams(member string) []int {
	seen := make(map[int]bool)
	var teams []int
	for _, e := range r.Entries {
		if e.Member == member && !seen[e.Team] {
			seen[e.Team] = true
			teams = append(teams, e.Team)
		}
	}
	return teams
}

// Options bound the assignment.
type Options struct {
	MinMembersPerTeam int
	MinTeamsPerMember int
	Excluded          map[int]bool
}

type matchTeam struct {
	match int
	team  int
}

type matchMember struct {
	match  int
	member string
}

type engine struct {
	matches  []catalog.Match
	eligible []int
	members  []string
	opts     Options

	entries     []Entry
	busy        map[matchMember]bool       // member already assigned in match
	taken       map[matchTeam]bool         // (match, team) already assigned
	teamMembers map[int]map[string]bool    // team -> distinct members
	memberTeams map[string]map[int]bool    // member -> distinct teams
	load        map[string]int             // member -> total assignments
	occurrences map[int]int                // team -> appearances across the event
	cursor      int                        // rotating roster pointer
}

// Run assigns members to (match, team) scouting duties. It performs one
// round-robin distribution pass over matches in chronological order, then
// repairs team and member coverage floors, then purges any excluded team
// entries. Given identical inputs it produces identical results.
func Run(matches []catalog.Match, eligible []int, members []string, opts Options) *Result {
	if opts.MinMembersPerTeam < 1 {
		opts.MinMembersPerTeam = 1
	}
	if opts.MinTeamsPerMember < 1 {
		opts.MinTeamsPerMember = 1
	}

	if len(members) == 0 {
		return &Result{Diagnostics: []string{"no members available"}}
	}

	e := &engine{
		matches:     matches,
		eligible:    eligible,
		members:     members,
		opts:        opts,
		busy:        make(map[matchMember]bool),
		taken:       make(map[matchTeam]bool),
		teamMembers: make(map[int]map[string]bool),
		memberTeams: make(map[string]map[int]bool),
		load:        make(map[string]int),
		occurrences: make(map[int]int),
	}

	eligibleSet := make(map[int]bool, len(eligible))
	for _, t := range eligible {
		eligibleSet[t] = true
	}
	for _, m := range matches {
		for _, s := range m.Teams {
			if eligibleSet[s.Team] {
				e.occurrences[s.Team]++
			}
		}
	}

	e.distribute(eligibleSet)
	shortfalls := e.repairTeams()
	shortfalls = append(shortfalls, e.repairMembers()...)
	e.purge()
	e.sortEntries()

	return &Result{Entries: e.entries, Shortfalls: shortfalls}
}

// distribute is the initial round-robin pass. Within a match, teams with
// the fewest appearances across the event go first so single-appearance
// teams are not starved when the roster is smaller than the per-match
// team count. A team that has already reached its distinct-member floor
// is skipped, leaving the (match, team) slot open for the repair passes.
func (e *engine) distribute(eligibleSet map[int]bool) {
	for _, m := range e.matches {
		var teams []int
		for _, s := range m.Teams {
			if eligibleSet[s.Team] {
				teams = append(teams, s.Team)
			}
		}
		sort.SliceStable(teams, func(i, j int) bool {
			return e.occurrences[teams[i]] < e.occurrences[teams[j]]
		})

		for _, team := range teams {
			if len(e.teamMembers[team]) >= e.opts.MinMembersPerTeam {
				continue
			}
			member, ok := e.nextFreeMember(m.Number, team)
			if !ok {
				continue // no free member can raise this team's floor here
			}
			e.assign(m.Number, team, member)
		}
	}
}

// nextFreeMember advances the rotating pointer to the next member not yet
// assigned within the given match and not already scouting the team, so
// every distribution-pass assignment raises the team's distinct-member
// count. Slots it cannot fill stay open for the repair passes.
func (e *engine) nextFreeMember(match, team int) (string, bool) {
	for i := 0; i < len(e.members); i++ {
		idx := (e.cursor + i) % len(e.members)
		member := e.members[idx]
		if e.busy[matchMember{match, member}] || e.memberTeams[member][team] {
			continue
		}
		e.cursor = (idx + 1) % len(e.members)
		return member, true
	}
	return "", false
}

// repairTeams adds assignments for teams under the distinct-member floor.
// Candidates are scored by fewest current total assignments, ties broken
// by roster order, then by earliest match.
func (e *engine) repairTeams() []Shortfall {
	var shortfalls []Shortfall
	for _, team := range e.eligible {
		for len(e.teamMembers[team]) < e.opts.MinMembersPerTeam {
			match, member, ok := e.bestSlotForTeam(team)
			if !ok {
				shortfalls = append(shortfalls, Shortfall{
					Kind: TeamShortfall,
					Team: team,
					Want: e.opts.MinMembersPerTeam,
					Got:  len(e.teamMembers[team]),
				})
				break
			}
			e.assign(match, team, member)
		}
	}
	return shortfalls
}

func (e *engine) bestSlotForTeam(team int) (int, string, bool) {
	bestMatch := 0
	bestMember := ""
	bestLoad := -1
	bestRoster := -1

	for _, m := range e.matches {
		if !e.matchHasTeam(m, team) || e.taken[matchTeam{m.Number, team}] {
			continue
		}
		for ri, member := range e.members {
			if e.busy[matchMember{m.Number, member}] || e.memberTeams[member][team] {
				continue
			}
			if bestLoad < 0 || e.load[member] < bestLoad ||
				(e.load[member] == bestLoad && ri < bestRoster) {
				bestMatch, bestMember = m.Number, member
				bestLoad, bestRoster = e.load[member], ri
			}
		}
	}

	if bestLoad < 0 {
		return 0, "", false
	}
	return bestMatch, bestMember, true
}

// repairMembers adds assignments for members under the distinct-team
// floor, taking the first open (team, match) slot in registry then
// chronological order.
func (e *engine) repairMembers() []Shortfall {
	var shortfalls []Shortfall
	for _, member := range e.members {
		for len(e.memberTeams[member]) < e.opts.MinTeamsPerMember {
			match, team, ok := e.firstSlotForMember(member)
			if !ok {
				shortfalls = append(shortfalls, Shortfall{
					Kind:   MemberShortfall,
					Member: member,
					Want:   e.opts.MinTeamsPerMember,
					Got:    len(e.memberTeams[member]),
				})
				break
			}
			e.assign(match, team, member)
		}
	}
	return shortfalls
}

func (e *engine) firstSlotForMember(member string) (int, int, bool) {
	for _, team := range e.eligible {
		if e.memberTeams[member][team] {
			continue
		}
		for _, m := range e.matches {
			if !e.matchHasTeam(m, team) || e.taken[matchTeam{m.Number, team}] {
				continue
			}
			if e.busy[matchMember{m.Number, member}] {
				continue
			}
			return m.Number, team, true
		}
	}
	return 0, 0, false
}

func (e *engine) matchHasTeam(m catalog.Match, team int) bool {
	for _, s := range m.Teams {
		if s.Team == team {
			return true
		}
	}
	return false
}

func (e *engine) assign(match, team int, member string) {
	e.entries = append(e.entries, Entry{Match: match, Team: team, Member: member})
	e.busy[matchMember{match, member}] = true
	e.taken[matchTeam{match, team}] = true
	if e.teamMembers[team] == nil {
		e.teamMembers[team] = make(map[string]bool)
	}
	e.teamMembers[team][member] = true
	if e.memberTeams[member] == nil {
		e.memberTeams[member] = make(map[int]bool)
	}
	e.memberTeams[member][team] = true
	e.load[member]++
}

// purge drops entries naming an excluded team. The registry is built from
// the exclusion-filtered team set, so this final pass enforces the
// invariant rather than expecting to fire.
func (e *engine) purge() {
	kept := e.entries[:0]
	for _, entry := range e.entries {
		if e.opts.Excluded[entry.Team] {
			continue
		}
		kept = append(kept, entry)
	}
	e.entries = kept
}

// sortEntries orders entries by catalog order, then station order within
// a match, so the result is stable regardless of repair insertion order.
func (e *engine) sortEntries() {
	matchOrder := make(map[int]int, len(e.matches))
	stationOrder := make(map[matchTeam]int)
	for i, m := range e.matches {
		matchOrder[m.Number] = i
		for si, s := range m.Teams {
			stationOrder[matchTeam{m.Number, s.Team}] = si
		}
	}
	sort.SliceStable(e.entries, func(i, j int) bool {
		a, b := e.entries[i], e.entries[j]
		if matchOrder[a.Match] != matchOrder[b.Match] {
			return matchOrder[a.Match] < matchOrder[b.Match]
		}
		return stationOrder[matchTeam{a.Match, a.Team}] < stationOrder[matchTeam{b.Match, b.Team}]
	})
}
