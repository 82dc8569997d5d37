package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frc4915/scoutshift/internal/config"
	"github.com/frc4915/scoutshift/internal/report"
)

// Violation represents a constraint violation found during validation.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// duty is one (match, team, member) cell parsed from the event sheet.
type duty struct {
	Row    int
	Match  int
	Team   int
	Member string
}

// Validate reads a schedule workbook and checks it against the config:
// double-bookings, excluded teams, and unknown members are errors;
// coverage floors below the configured minimums are warnings.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	duties, err := readDuties(f)
	if err != nil {
		return nil, fmt.Errorf("reading event sheet: %w", err)
	}

	var violations []Violation
	violations = append(violations, checkDoubleBooking(duties)...)
	violations = append(violations, checkExcludedTeams(cfg, duties)...)
	violations = append(violations, checkRoster(cfg, duties)...)
	violations = append(violations, checkTeamCoverage(cfg, duties)...)
	violations = append(violations, checkMemberCoverage(cfg, duties)...)
	return violations, nil
}

func readDuties(f *excelize.File) ([]duty, error) {
	rows, err := f.GetRows(report.EventSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", report.EventSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", report.EventSheet)
	}

	// Station columns start after Match/Date/Day/Time.
	header := rows[0]
	var duties []duty
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}

		matchNum, err := strconv.Atoi(row[0])
		if err != nil {
			continue // break marker row
		}

		for col := 4; col < len(header) && col < len(row); col++ {
			cell := row[col]
			if cell == "" {
				continue
			}
			team, member, ok := parseAssignmentCell(cell)
			if !ok {
				continue // unassigned team
			}
			duties = append(duties, duty{
				Row:    i + 1,
				Match:  matchNum,
				Team:   team,
				Member: member,
			})
		}
	}
	return duties, nil
}

// parseAssignmentCell parses "<team> - <member>" and returns
// (team, member, true). A bare team number or any other text returns
// ok=false.
func parseAssignmentCell(cell string) (int, string, bool) {
	idx := strings.Index(cell, report.AssignmentSeparator)
	if idx < 0 {
		return 0, "", false
	}
	team, err := strconv.Atoi(cell[:idx])
	if err != nil {
		return 0, "", false
	}
	member := cell[idx+len(report.AssignmentSeparator):]
	if member == "" {
		return 0, "", false
	}
	return team, member, true
}

func checkDoubleBooking(duties []duty) []Violation {
	type matchMember struct {
		match  int
		member string
	}
	teams := make(map[matchMember][]duty)
	for _, d := range duties {
		k := matchMember{d.Match, d.Member}
		teams[k] = append(teams[k], d)
	}

	var violations []Violation
	for k, ds := range teams {
		if len(ds) > 1 {
			violations = append(violations, Violation{
				Row:  ds[1].Row,
				Type: "error",
				Message: fmt.Sprintf("%s scouts %d teams in match %d",
					k.member, len(ds), k.match),
			})
		}
	}
	sortViolations(violations)
	return violations
}

func checkExcludedTeams(cfg *config.Config, duties []duty) []Violation {
	excluded := cfg.Excluded()
	var violations []Violation
	for _, d := range duties {
		if excluded[d.Team] {
			violations = append(violations, Violation{
				Row:  d.Row,
				Type: "error",
				Message: fmt.Sprintf("excluded team %d is assigned to %s in match %d",
					d.Team, d.Member, d.Match),
			})
		}
	}
	return violations
}

func checkRoster(cfg *config.Config, duties []duty) []Violation {
	roster := make(map[string]bool, len(cfg.Members))
	for _, m := range cfg.Members {
		roster[m] = true
	}

	var violations []Violation
	flagged := make(map[string]bool)
	for _, d := range duties {
		if roster[d.Member] || flagged[d.Member] {
			continue
		}
		flagged[d.Member] = true
		violations = append(violations, Violation{
			Row:     d.Row,
			Type:    "error",
			Message: fmt.Sprintf("%s is assigned duties but is not on the roster", d.Member),
		})
	}
	return violations
}

func checkTeamCoverage(cfg *config.Config, duties []duty) []Violation {
	excluded := cfg.Excluded()
	members := make(map[int]map[string]bool)
	for _, d := range duties {
		if excluded[d.Team] {
			continue
		}
		if members[d.Team] == nil {
			members[d.Team] = make(map[string]bool)
		}
		members[d.Team][d.Member] = true
	}

	var violations []Violation
	for team, ms := range members {
		if len(ms) < cfg.Rules.MinMembersPerTeam {
			violations = append(violations, Violation{
				Type: "warning",
				Message: fmt.Sprintf("team %d is scouted by %d members (want %d)",
					team, len(ms), cfg.Rules.MinMembersPerTeam),
			})
		}
	}
	sortViolations(violations)
	return violations
}

func checkMemberCoverage(cfg *config.Config, duties []duty) []Violation {
	teams := make(map[string]map[int]bool)
	for _, d := range duties {
		if teams[d.Member] == nil {
			teams[d.Member] = make(map[int]bool)
		}
		teams[d.Member][d.Team] = true
	}

	var violations []Violation
	for _, member := range cfg.Members {
		if len(teams[member]) < cfg.Rules.MinTeamsPerMember {
			violations = append(violations, Violation{
				Type: "warning",
				Message: fmt.Sprintf("%s scouts %d teams (want %d)",
					member, len(teams[member]), cfg.Rules.MinTeamsPerMember),
			})
		}
	}
	return violations
}

// sortViolations keeps map-derived violation lists deterministic.
func sortViolations(violations []Violation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Message < violations[j].Message
	})
}
