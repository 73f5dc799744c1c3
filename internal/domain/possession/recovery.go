package possession

import (
	"sort"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
)

// Change is emitted each time the possessing team differs from the previous
// event's possessing team. RecoveryTime is the clock delta since the previous
// change and can be zero or negative across period boundaries.
type Change struct {
	LostBy       string
	RecoveredBy  string
	RecoveryTime int
	TimeSeconds  int
	TimeBin      int
}

// Recovery is a Change with a strictly positive recovery time.
type Recovery struct {
	Change
	Minute int
}

type TeamMinuteRecovery struct {
	Team                string
	Minute              int
	AverageRecoveryTime float64
	Recoveries          int
}

type TeamBinRecovery struct {
	Team                string
	TimeBin             int
	AverageRecoveryTime float64
	Recoveries          int
}

type TeamRecoverySummary struct {
	Team                string
	Recoveries          int
	AverageRecoveryTime float64
	FastestRecovery     int
}

// ScanChanges walks time-ordered events once and emits one Change per
// possession switch. The first event seeds the current team and clock.
func ScanChanges(events []matchevent.Event) []Change {
	if len(events) == 0 {
		return nil
	}

	out := make([]Change, 0, len(events)/8)
	lastTeam := events[0].PossessionTeam
	lastTime := events[0].TimeSeconds()
	for _, e := range events[1:] {
		if e.PossessionTeam == lastTeam {
			continue
		}
		now := e.TimeSeconds()
		out = append(out, Change{
			LostBy:       lastTeam,
			RecoveredBy:  e.PossessionTeam,
			RecoveryTime: now - lastTime,
			TimeSeconds:  now,
			TimeBin:      e.TimeBin(),
		})
		lastTeam = e.PossessionTeam
		lastTime = now
	}
	return out
}

// Recoveries keeps the changes with a positive recovery time.
func Recoveries(events []matchevent.Event) []Recovery {
	changes := ScanChanges(events)
	out := make([]Recovery, 0, len(changes))
	for _, c := range changes {
		if c.RecoveryTime <= 0 {
			continue
		}
		out = append(out, Recovery{Change: c, Minute: c.TimeSeconds / 60})
	}
	return out
}

type teamKey struct {
	team   string
	bucket int
}

type accumulator struct {
	sum   int
	count int
}

// AverageByTeamMinute is the mean recovery time per recovering team and minute.
func AverageByTeamMinute(recoveries []Recovery) []TeamMinuteRecovery {
	acc := make(map[teamKey]*accumulator)
	for _, r := range recoveries {
		add(acc, teamKey{team: r.RecoveredBy, bucket: r.Minute}, r.RecoveryTime)
	}

	out := make([]TeamMinuteRecovery, 0, len(acc))
	for key, a := range acc {
		out = append(out, TeamMinuteRecovery{
			Team:                key.team,
			Minute:              key.bucket,
			AverageRecoveryTime: float64(a.sum) / float64(a.count),
			Recoveries:          a.count,
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

// AverageByTeamBin is the mean recovery time per recovering team and 5-minute bucket.
func AverageByTeamBin(recoveries []Recovery) []TeamBinRecovery {
	acc := make(map[teamKey]*accumulator)
	for _, r := range recoveries {
		add(acc, teamKey{team: r.RecoveredBy, bucket: r.TimeBin}, r.RecoveryTime)
	}

	out := make([]TeamBinRecovery, 0, len(acc))
	for key, a := range acc {
		out = append(out, TeamBinRecovery{
			Team:                key.team,
			TimeBin:             key.bucket,
			AverageRecoveryTime: float64(a.sum) / float64(a.count),
			Recoveries:          a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].TimeBin < out[j].TimeBin
	})
	return out
}

// TeamSummary reports count, mean and fastest recovery per recovering team.
func TeamSummary(recoveries []Recovery) []TeamRecoverySummary {
	byTeam := make(map[string]*TeamRecoverySummary)
	sums := make(map[string]int)
	for _, r := range recoveries {
		s, ok := byTeam[r.RecoveredBy]
		if !ok {
			s = &TeamRecoverySummary{Team: r.RecoveredBy, FastestRecovery: r.RecoveryTime}
			byTeam[r.RecoveredBy] = s
		}
		s.Recoveries++
		sums[r.RecoveredBy] += r.RecoveryTime
		if r.RecoveryTime < s.FastestRecovery {
			s.FastestRecovery = r.RecoveryTime
		}
	}

	out := make([]TeamRecoverySummary, 0, len(byTeam))
	for team, s := range byTeam {
		s.AverageRecoveryTime = float64(sums[team]) / float64(s.Recoveries)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}

func add(acc map[teamKey]*accumulator, key teamKey, value int) {
	a, ok := acc[key]
	if !ok {
		a = &accumulator{}
		acc[key] = a
	}
	a.sum += value
	a.count++
}
