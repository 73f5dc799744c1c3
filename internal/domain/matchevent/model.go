package matchevent

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	// TimeBinSeconds is the width of the time buckets used by the match page.
	TimeBinSeconds = 300

	TypeCarry = "Carry"
)

// Location is a pitch coordinate on the 120x80 open-data grid.
type Location struct {
	X float64
	Y float64
}

// Event is one row of a match event stream, sourced verbatim from the feed.
type Event struct {
	ID             string
	Index          int
	Period         int
	Minute         int
	Second         int
	Type           string
	Team           string
	PossessionTeam string
	Possession     int
	Player         string
	Location       *Location
	CarryEnd       *Location
}

// TimeSeconds is the match clock in seconds. Minutes are cumulative across
// periods in the feed, so the second half starts at 2700.
func (e Event) TimeSeconds() int {
	return e.Minute*60 + e.Second
}

// TimeBin is the zero-based 5-minute bucket of the event.
func (e Event) TimeBin() int {
	return e.TimeSeconds() / TimeBinSeconds
}

// Prepare orders events by feed index and drops rows stamped at 00:00, which
// are lineup and kick-off bookkeeping rather than play.
func Prepare(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.TimeSeconds() == 0 {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type Competition struct {
	CompetitionID     int64
	SeasonID          int64
	CompetitionName   string
	SeasonName        string
	CountryName       string
	CompetitionGender string
}

type Match struct {
	MatchID         int64
	CompetitionID   int64
	SeasonID        int64
	CompetitionName string
	SeasonName      string
	MatchDate       time.Time
	HomeTeam        string
	AwayTeam        string
	HomeTeamGender  string
	HomeScore       int
	AwayScore       int
	MatchWeek       int
}

// Scoreline renders the match as "Home 5-0 Away".
func (m Match) Scoreline() string {
	return fmt.Sprintf("%s %d-%d %s", m.HomeTeam, m.HomeScore, m.AwayScore, m.AwayTeam)
}

// GoalMargin is the absolute score difference.
func (m Match) GoalMargin() int {
	diff := m.HomeScore - m.AwayScore
	if diff < 0 {
		return -diff
	}
	return diff
}

// MostOneSided returns the match with the largest goal margin. Ties go to the
// latest match date, then the lowest match id.
func MostOneSided(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		switch {
		case m.GoalMargin() > best.GoalMargin():
			best = m
		case m.GoalMargin() < best.GoalMargin():
		case m.MatchDate.After(best.MatchDate):
			best = m
		case m.MatchDate.Equal(best.MatchDate) && m.MatchID < best.MatchID:
			best = m
		}
	}
	return best, true
}

// Feed reads competitions, fixtures and event streams from the data provider.
type Feed interface {
	FetchCompetitions(ctx context.Context) ([]Competition, error)
	FetchMatches(ctx context.Context, competitionID, seasonID int64) ([]Match, error)
	FetchEvents(ctx context.Context, matchID int64) ([]Event, error)
}
