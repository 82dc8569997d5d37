package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/frc4915/scoutshift/internal/assign"
	"github.com/frc4915/scoutshift/internal/catalog"
	"github.com/frc4915/scoutshift/internal/config"
)

// EventSheet is the name of the event-wide schedule sheet.
const EventSheet = "Event Schedule"

// AssignmentSeparator splits a team number from its member in an event
// sheet cell, e.g. "1234 - Alex Carter". The validator relies on it when
// reading a workbook back.
const AssignmentSeparator = " - "

// Generate creates an Excel workbook with the event-wide schedule and one
// sheet per roster member.
func Generate(cfg *config.Config, matches []catalog.Match, breaks []catalog.Break, result *assign.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeEventSheet(f, matches, breaks, result); err != nil {
		return nil, fmt.Errorf("writing event sheet: %w", err)
	}

	if err := writeMemberSheets(f, cfg, matches, result); err != nil {
		return nil, fmt.Errorf("writing member sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeEventSheet(f *excelize.File, matches []catalog.Match, breaks []catalog.Break, result *assign.Result) error {
	sheet := EventSheet
	f.NewSheet(sheet)

	stations := catalog.StationLabels(matches)
	headers := []string{"Match", "Date", "Day", "Time"}
	headers = append(headers, stations...)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if headerStyle != 0 {
		for i := range headers {
			f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), headerStyle)
		}
	}

	breakStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Family: "Arial"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFD700"}},
	})

	stationIndex := make(map[string]int, len(stations))
	for i, s := range stations {
		stationIndex[s] = i
	}

	// Break markers render between the two matches that triggered them.
	breaksAfter := make(map[int][]catalog.Break)
	for _, b := range breaks {
		breaksAfter[b.Before] = append(breaksAfter[b.Before], b)
	}

	row := 2
	for i, m := range matches {
		f.SetCellValue(sheet, cellRef(1, row), m.Number)
		f.SetCellValue(sheet, cellRef(2, row), m.Time.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(3, row), m.Time.Format("Mon"))
		f.SetCellValue(sheet, cellRef(4, row), m.Time.Format("15:04"))

		for _, s := range m.Teams {
			col := stationIndex[s.Label] + 5
			if member, ok := result.Member(m.Number, s.Team); ok {
				f.SetCellValue(sheet, cellRef(col, row), fmt.Sprintf("%d%s%s", s.Team, AssignmentSeparator, member))
			} else {
				// Unassigned or excluded teams render bare.
				f.SetCellValue(sheet, cellRef(col, row), fmt.Sprintf("%d", s.Team))
			}
		}
		row++

		for _, b := range breaksAfter[i] {
			f.SetCellValue(sheet, cellRef(1, row), string(b.Kind))
			if breakStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), breakStyle)
			}
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 6)
	f.SetColWidth(sheet, "D", "D", 8)
	for i := range stations {
		col := colLetter(i + 5)
		f.SetColWidth(sheet, col, col, 24)
	}

	return nil
}

func writeMemberSheets(f *excelize.File, cfg *config.Config, matches []catalog.Match, result *assign.Result) error {
	matchByNumber := make(map[int]catalog.Match, len(matches))
	for _, m := range matches {
		matchByNumber[m.Number] = m
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	emphasisStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Family: "Arial"},
	})

	for _, member := range cfg.Members {
		sheet := sheetName(member)
		f.NewSheet(sheet)

		teams := result.Teams(member)
		teamLabels := make([]string, len(teams))
		for i, t := range teams {
			teamLabels[i] = fmt.Sprintf("%d", t)
		}
		f.SetCellValue(sheet, "A1", "Assigned Teams")
		f.SetCellValue(sheet, "B1", strings.Join(teamLabels, ", "))

		headers := []string{"Match", "Date", "Time", "Gap", "Team", "Match Teams"}
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 3), h)
		}
		if headerStyle != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 3), cellRef(i+1, 3), headerStyle)
			}
		}

		row := 4
		var prev *catalog.Match
		for _, duty := range result.Duties(member) {
			m, ok := matchByNumber[duty.Match]
			if !ok {
				continue
			}

			gap := "N/A"
			emphasize := false
			if prev != nil {
				gap, emphasize = catalog.GapLabel(*prev, m, cfg.LunchGap(), cfg.ShortGap())
			}

			var allTeams []string
			for _, s := range m.Teams {
				allTeams = append(allTeams, fmt.Sprintf("%d", s.Team))
			}

			f.SetCellValue(sheet, cellRef(1, row), m.Number)
			f.SetCellValue(sheet, cellRef(2, row), m.Time.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(3, row), m.Time.Format("15:04"))
			f.SetCellValue(sheet, cellRef(4, row), gap)
			f.SetCellValue(sheet, cellRef(5, row), duty.Team)
			f.SetCellValue(sheet, cellRef(6, row), strings.Join(allTeams, ", "))
			if emphasize && emphasisStyle != 0 {
				f.SetCellStyle(sheet, cellRef(4, row), cellRef(4, row), emphasisStyle)
			}

			prevMatch := m
			prev = &prevMatch
			row++
		}

		widths := map[string]float64{"A": 10, "B": 12, "C": 8, "D": 14, "E": 10, "F": 32}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

// sheetName trims a member name to Excel's 31-character sheet name limit.
func sheetName(member string) string {
	if len(member) > 31 {
		return member[:31]
	}
	return member
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
