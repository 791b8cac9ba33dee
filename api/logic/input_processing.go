/* input_processing.go
 * Contains the logic for processing user input: team references, typed scores and deadlines
 */

package logic

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/unidecode"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DeadlineLayout is the single textual pattern deadlines are exchanged in (same as an html datetime-local field)
const DeadlineLayout = "2006-01-02T15:04"

// DisplayLayout is how deadlines are shown back to users
const DisplayLayout = "02/01/2006 at 15:04"

var (
	ErrInvalidScore    = errors.New("scores must be whole numbers (0 or more)")
	ErrInvalidDeadline = errors.New("invalid deadline date or time")
	ErrInvalidLine     = errors.New("scores must look like 2-1")
)

// foldName lower cases a team name and strips accents so "Grêmio" and "gremio" compare equal
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(name)))
}

// MatchTeamName finds the valid team name closest to input.
// An exact (case and accent insensitive) match always wins, otherwise the fuzzy match with the smallest distance
func MatchTeamName(input string, validTeams []string) (string, bool) {
	lookup := make(map[string]string)
	var validFolded []string
	for _, name := range validTeams {
		folded := foldName(name)
		if _, seen := lookup[folded]; seen {
			continue
		}
		lookup[folded] = name
		validFolded = append(validFolded, folded)
	}

	target := foldName(input)
	if target == "" {
		return "", false
	}
	if name, ok := lookup[target]; ok {
		return name, true
	}

	ranks := fuzzy.RankFind(target, validFolded)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return lookup[ranks[0].Target], true
}

// CheckTeamNames processes team names from user input and checks if they are valid.
// Returns the correctly formatted team names and the inputs that could not be matched
func CheckTeamNames(inputTeams []string, validTeams []string) ([]string, []string) {
	var formattedTeamNames []string
	var invalidTeams []string

	for _, team := range inputTeams {
		name, ok := MatchTeamName(team, validTeams)
		if !ok {
			invalidTeams = append(invalidTeams, team)
			continue
		}
		formattedTeamNames = append(formattedTeamNames, name)
	}
	return formattedTeamNames, invalidTeams
}

// ParseScore parses a typed score. A blank value means no score and returns nil
func ParseScore(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScore, value)
	}
	return &n, nil
}

// ParseGuess parses a predicted score. Unlike official results a blank guess counts as 0
func ParseGuess(value string) (int, error) {
	n, err := ParseScore(value)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, nil
	}
	return *n, nil
}

// ParseScoreLine splits a score written as "2-1", "2x1" or "2:1" into its home and away parts
func ParseScoreLine(line string) (string, string, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	for _, sep := range []string{"-", "x", ":"} {
		home, away, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		home, away = strings.TrimSpace(home), strings.TrimSpace(away)
		if home == "" || away == "" {
			break
		}
		return home, away, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidLine, line)
}

// ParseDeadline combines a date (2006-01-02) and a time (15:04) entered separately into an instant in loc
func ParseDeadline(date string, clock string, loc *time.Location) (time.Time, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("%w: date and time are required", ErrInvalidDeadline)
	}
	if loc == nil {
		loc = time.UTC
	}
	deadline, err := time.ParseInLocation(DeadlineLayout, date+"T"+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrInvalidDeadline, date, clock)
	}
	return deadline, nil
}

// ParseDeadlineValue accepts either RFC3339 or the canonical DeadlineLayout (read in loc)
func ParseDeadlineValue(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	date, clock, found := strings.Cut(value, "T")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, value)
	}
	return ParseDeadline(date, clock, loc)
}

// FormatDeadline renders a deadline for messages
func FormatDeadline(deadline time.Time, loc *time.Location) string {
	if loc != nil {
		deadline = deadline.In(loc)
	}
	return deadline.Format(DisplayLayout)
}
