package zone

import (
	"sort"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
)

// Pitch thresholds in StatsBomb coordinates (120x80, attacking left to right).
// All bounds are inclusive.
const (
	FinalThirdX     = 80.0
	PenaltyAreaX    = 102.0
	PenaltyAreaMinY = 18.0
	PenaltyAreaMaxY = 62.0
)

type Zone string

const (
	FinalThird  Zone = "final_third"
	PenaltyArea Zone = "penalty_area"
)

// Label is the dashboard caption for the zone.
func (z Zone) Label() string {
	switch z {
	case FinalThird:
		return "Zona de Ataque"
	case PenaltyArea:
		return "Grande Área"
	default:
		return string(z)
	}
}

// Classification is the per-carry predicate result.
type Classification struct {
	Team        string
	TimeSeconds int
	Minute      int
	X           float64
	Y           float64
	FinalThird  bool
	PenaltyArea bool
}

// Dangerous counts the zones reached by the carry, 0 to 2.
func (c Classification) Dangerous() int {
	n := 0
	if c.FinalThird {
		n++
	}
	if c.PenaltyArea {
		n++
	}
	return n
}

type Entry struct {
	Team        string
	Zone        Zone
	TimeSeconds int
	Minute      int
}

// TeamZone is the series key used by the per-minute chart, e.g.
// "Chelsea FCW - Grande Área".
func (e Entry) TeamZone() string {
	return e.Team + " - " + e.Zone.Label()
}

type MinuteCount struct {
	Minute   int
	Team     string
	Zone     Zone
	TeamZone string
	Entries  int
}

type TeamMinuteDanger struct {
	Team             string
	Minute           int
	DangerousEntries int
}

// Combined joins recovery speed with attacking carries for one team-minute.
type Combined struct {
	Team                string
	Minute              int
	AverageRecoveryTime float64
	DangerousEntries    int
}

// Classify evaluates the zone thresholds for a carry. It reports false for
// any other event type and for carries without an end location.
func Classify(e matchevent.Event) (Classification, bool) {
	if e.Type != matchevent.TypeCarry || e.CarryEnd == nil {
		return Classification{}, false
	}

	x, y := e.CarryEnd.X, e.CarryEnd.Y
	seconds := e.TimeSeconds()
	return Classification{
		Team:        e.Team,
		TimeSeconds: seconds,
		Minute:      seconds / 60,
		X:           x,
		Y:           y,
		FinalThird:  x >= FinalThirdX,
		PenaltyArea: x >= PenaltyAreaX && y >= PenaltyAreaMinY && y <= PenaltyAreaMaxY,
	}, true
}

// Entries lists one entry per zone reached. A carry into the penalty area
// also counts as a final-third entry.
func Entries(events []matchevent.Event) []Entry {
	var finalThird, penaltyArea []Entry
	for _, e := range events {
		c, ok := Classify(e)
		if !ok {
			continue
		}
		if c.FinalThird {
			finalThird = append(finalThird, Entry{Team: c.Team, Zone: FinalThird, TimeSeconds: c.TimeSeconds, Minute: c.Minute})
		}
		if c.PenaltyArea {
			penaltyArea = append(penaltyArea, Entry{Team: c.Team, Zone: PenaltyArea, TimeSeconds: c.TimeSeconds, Minute: c.Minute})
		}
	}
	return append(finalThird, penaltyArea...)
}

func CountByMinute(entries []Entry) []MinuteCount {
	type key struct {
		minute int
		team   string
		zone   Zone
	}
	counts := make(map[key]int)
	for _, e := range entries {
		counts[key{minute: e.Minute, team: e.Team, zone: e.Zone}]++
	}

	out := make([]MinuteCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, MinuteCount{
			Minute:   k.minute,
			Team:     k.team,
			Zone:     k.zone,
			TeamZone: Entry{Team: k.team, Zone: k.zone}.TeamZone(),
			Entries:  n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minute != out[j].Minute {
			return out[i].Minute < out[j].Minute
		}
		return out[i].TeamZone < out[j].TeamZone
	})
	return out
}

// DangerousByTeamMinute sums zone flags per team and minute over every
// classified carry. Team-minutes with carries but no entries report zero.
func DangerousByTeamMinute(events []matchevent.Event) []TeamMinuteDanger {
	type key struct {
		team   string
		minute int
	}
	sums := make(map[key]int)
	for _, e := range events {
		c, ok := Classify(e)
		if !ok {
			continue
		}
		sums[key{team: c.Team, minute: c.Minute}] += c.Dangerous()
	}

	out := make([]TeamMinuteDanger, 0, len(sums))
	for k, n := range sums {
		out = append(out, TeamMinuteDanger{Team: k.team, Minute: k.minute, DangerousEntries: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Minute < out[j].Minute
	})
	return out
}

// Combine inner-joins per-minute recovery averages with dangerous entries on
// team and minute.
func Combine(recoveries []possession.TeamMinuteRecovery, danger []TeamMinuteDanger) []Combined {
	type key struct {
		team   string
		minute int
	}
	index := make(map[key]int, len(danger))
	for _, d := range danger {
		index[key{team: d.Team, minute: d.Minute}] = d.DangerousEntries
	}

	out := make([]Combined, 0, len(recoveries))
	for _, r := range recoveries {
		n, ok := index[key{team: r.Team, minute: r.Minute}]
		if !ok {
			continue
		}
		out = append(out, Combined{
			Team:                r.Team,
			Minute:              r.Minute,
			AverageRecoveryTime: r.AverageRecoveryTime,
			DangerousEntries:    n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].Minute < out[j].Minute
	})
	return out
}

// TeamTotals counts entries per team and zone over the whole match.
func TeamTotals(entries []Entry) map[string]map[Zone]int {
	out := make(map[string]map[Zone]int)
	for _, e := range entries {
		byZone, ok := out[e.Team]
		if !ok {
			byZone = make(map[Zone]int, 2)
			out[e.Team] = byZone
		}
		byZone[e.Zone]++
	}
	return out
}
