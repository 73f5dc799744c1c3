package playerprofile

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

type Profile string

const (
	Defenders Profile = "defenders"
	Attackers Profile = "attackers"
)

// Profiles lists every supported profile in display order.
var Profiles = []Profile{Defenders, Attackers}

func ParseProfile(v string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(v))) {
	case Defenders:
		return Defenders, nil
	case Attackers:
		return Attackers, nil
	default:
		return "", fmt.Errorf("unknown profile %q", v)
	}
}

// Title is the dashboard heading for the profile.
func (p Profile) Title() string {
	switch p {
	case Defenders:
		return "Defesas"
	case Attackers:
		return "Avançados"
	default:
		return string(p)
	}
}

// Identity columns shared by every metric table.
const (
	ColumnMatchID    = "match_id"
	ColumnPlayerName = "player_name"
	ColumnTeam       = "team"
	ColumnRole       = "role"
	ColumnGender     = "gender"
)

// IsIdentityColumn reports whether the column is an identifier rather than a metric.
func IsIdentityColumn(name string) bool {
	switch name {
	case ColumnMatchID, ColumnPlayerName, ColumnTeam, ColumnRole, ColumnGender:
		return true
	default:
		return false
	}
}

// PlayerMatchMetrics is one player's metric line for one match. Values follow
// the owning table's Metrics order; NaN marks a missing value.
type PlayerMatchMetrics struct {
	MatchID    int64
	PlayerName string
	Team       string
	Role       string
	Gender     string
	Values     []float64
}

// MatchMetrics is the per-match table for a profile.
type MatchMetrics struct {
	Profile Profile
	Metrics []string
	Rows    []PlayerMatchMetrics
}

// PlayerAggregate is a player's per-match mean over every metric.
type PlayerAggregate struct {
	PlayerName string
	Team       string
	Role       string
	Gender     string
	Matches    int
	Values     []float64
}

// Complete reports whether every metric mean is defined.
func (a PlayerAggregate) Complete() bool {
	for _, v := range a.Values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Repository loads per-match metric tables.
type Repository interface {
	ListMatchMetrics(ctx context.Context, profile Profile) (MatchMetrics, error)
}

// AttachGender inner-joins rows with the gender of the match they belong to.
// Rows whose match is unknown are dropped.
func AttachGender(table MatchMetrics, genderByMatch map[int64]string) MatchMetrics {
	out := MatchMetrics{
		Profile: table.Profile,
		Metrics: table.Metrics,
		Rows:    make([]PlayerMatchMetrics, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		gender, ok := genderByMatch[row.MatchID]
		if !ok {
			continue
		}
		row.Gender = gender
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Aggregate groups rows by player name. Team, role and gender take the most
// frequent value (ties go to the lexicographically smallest). Metrics take the
// mean of the non-missing values, or NaN when none exist. Output is sorted by
// player name.
func Aggregate(table MatchMetrics) []PlayerAggregate {
	type group struct {
		teams   map[string]int
		roles   map[string]int
		genders map[string]int
		sums    []float64
		counts  []int
		matches int
	}

	width := len(table.Metrics)
	groups := make(map[string]*group)
	for _, row := range table.Rows {
		g, ok := groups[row.PlayerName]
		if !ok {
			g = &group{
				teams:   make(map[string]int),
				roles:   make(map[string]int),
				genders: make(map[string]int),
				sums:    make([]float64, width),
				counts:  make([]int, width),
			}
			groups[row.PlayerName] = g
		}
		g.matches++
		countValue(g.teams, row.Team)
		countValue(g.roles, row.Role)
		countValue(g.genders, row.Gender)
		for i := 0; i < width && i < len(row.Values); i++ {
			if math.IsNaN(row.Values[i]) {
				continue
			}
			g.sums[i] += row.Values[i]
			g.counts[i]++
		}
	}

	out := make([]PlayerAggregate, 0, len(groups))
	for name, g := range groups {
		values := make([]float64, width)
		for i := range values {
			if g.counts[i] == 0 {
				values[i] = math.NaN()
				continue
			}
			values[i] = g.sums[i] / float64(g.counts[i])
		}
		out = append(out, PlayerAggregate{
			PlayerName: name,
			Team:       mode(g.teams),
			Role:       mode(g.roles),
			Gender:     mode(g.genders),
			Matches:    g.matches,
			Values:     values,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerName < out[j].PlayerName })
	return out
}

// SplitComplete separates aggregates with every metric defined from the rest.
func SplitComplete(aggregates []PlayerAggregate) (complete, incomplete []PlayerAggregate) {
	for _, a := range aggregates {
		if a.Complete() {
			complete = append(complete, a)
			continue
		}
		incomplete = append(incomplete, a)
	}
	return complete, incomplete
}

// Matrix returns aggregate values as rows, one per player.
func Matrix(aggregates []PlayerAggregate) [][]float64 {
	out := make([][]float64, len(aggregates))
	for i, a := range aggregates {
		out[i] = append([]float64(nil), a.Values...)
	}
	return out
}

func countValue(counts map[string]int, v string) {
	if v == "" {
		return
	}
	counts[v]++
}

func mode(counts map[string]int) string {
	best, bestCount := "", 0
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best, bestCount = v, n
		}
	}
	return best
}
