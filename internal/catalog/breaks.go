package catalog

import (
	"fmt"
	"time"
)

// BreakKind classifies a synthetic break row between two consecutive
// matches. Breaks are presentation artifacts; they never affect
// assignment.
type BreakKind string

const (
	LunchBreak BreakKind = "Lunch Break"
	Overnight  BreakKind = "Overnight"
)

// Break marks a gap between the matches at the surrounding catalog
// indices: it renders after matches[Before].
type Break struct {
	Kind   BreakKind
	Before int // catalog index of the match preceding the break
}

// Breaks walks chronologically consecutive matches and derives break
// markers. A change of day marker yields an Overnight break; otherwise a
// gap of at least lunchGap yields a Lunch Break. The day check runs
// first so a long overnight gap is never labeled as lunch.
func Breaks(matches []Match, lunchGap time.Duration) []Break {
	var breaks []Break
	for i := 1; i < len(matches); i++ {
		prev, next := matches[i-1], matches[i]
		switch {
		case prev.Day() != next.Day():
			breaks = append(breaks, Break{Kind: Overnight, Before: i - 1})
		case next.Time.Sub(prev.Time) >= lunchGap:
			breaks = append(breaks, Break{Kind: LunchBreak, Before: i - 1})
		}
	}
	return breaks
}

// GapLabel annotates the gap between two matches a member is scheduled
// for, as shown on that member's sheet. Consecutive match numbers and
// zero gaps read "N/A"; day changes read "Overnight"; gaps at or above
// lunchGap read "Lunch Break"; everything else is the gap in minutes.
// The second return value is true when the gap deserves emphasis
// (breaks, or plain gaps longer than shortGap).
func GapLabel(prev, next Match, lunchGap, shortGap time.Duration) (string, bool) {
	if next.Number == prev.Number+1 {
		return "N/A", false
	}

	gap := next.Time.Sub(prev.Time)
	switch {
	case prev.Day() != next.Day():
		return string(Overnight), true
	case gap >= lunchGap:
		return string(LunchBreak), true
	case gap == 0:
		return "N/A", false
	case gap > shortGap:
		return fmt.Sprintf("%d minutes", int(gap.Minutes())), true
	default:
		return fmt.Sprintf("%d minutes", int(gap.Minutes())), false
	}
}
