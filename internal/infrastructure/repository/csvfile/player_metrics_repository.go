// Package csvfile reads per-match player metrics from <profile>.csv files.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

var identityTypes = map[string]series.Type{
	playerprofile.ColumnMatchID:    series.String,
	playerprofile.ColumnPlayerName: series.String,
	playerprofile.ColumnTeam:       series.String,
	playerprofile.ColumnRole:       series.String,
	playerprofile.ColumnGender:     series.String,
}

type PlayerMetricsRepository struct {
	dir string
}

func NewPlayerMetricsRepository(dir string) *PlayerMetricsRepository {
	return &PlayerMetricsRepository{dir: dir}
}

// Path is the file read for profile.
func (r *PlayerMetricsRepository) Path(profile playerprofile.Profile) string {
	return filepath.Join(r.dir, string(profile)+".csv")
}

func (r *PlayerMetricsRepository) ListMatchMetrics(ctx context.Context, profile playerprofile.Profile) (playerprofile.MatchMetrics, error) {
	if err := ctx.Err(); err != nil {
		return playerprofile.MatchMetrics{}, err
	}

	path := r.Path(profile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return playerprofile.MatchMetrics{}, fmt.Errorf("%w: metrics file %s", usecase.ErrNotFound, path)
	}
	if err != nil {
		return playerprofile.MatchMetrics{}, fmt.Errorf("open metrics file %s: %w", path, err)
	}
	defer f.Close()

	table, err := Decode(profile, f)
	if err != nil {
		return playerprofile.MatchMetrics{}, fmt.Errorf("read metrics file %s: %w", path, err)
	}
	return table, nil
}

// Decode parses a metrics CSV. Identity columns are read as text; every other
// column is a metric, with blanks and unparsable cells read as NaN.
func Decode(profile playerprofile.Profile, r io.Reader) (playerprofile.MatchMetrics, error) {
	df := dataframe.ReadCSV(r,
		dataframe.WithTypes(identityTypes),
		dataframe.NaNValues([]string{"NA", "NaN", "nan", "<nil>", ""}),
	)
	if df.Err != nil {
		return playerprofile.MatchMetrics{}, df.Err
	}

	names := df.Names()
	for _, required := range []string{playerprofile.ColumnMatchID, playerprofile.ColumnPlayerName} {
		if !contains(names, required) {
			return playerprofile.MatchMetrics{}, fmt.Errorf("missing required column %q", required)
		}
	}

	out := playerprofile.MatchMetrics{Profile: profile}
	var metricColumns [][]float64
	for _, name := range names {
		if playerprofile.IsIdentityColumn(name) {
			continue
		}
		out.Metrics = append(out.Metrics, name)
		metricColumns = append(metricColumns, df.Col(name).Float())
	}

	matchIDs := df.Col(playerprofile.ColumnMatchID).Records()
	players := df.Col(playerprofile.ColumnPlayerName).Records()
	teams := optionalRecords(df, names, playerprofile.ColumnTeam)
	roles := optionalRecords(df, names, playerprofile.ColumnRole)
	genders := optionalRecords(df, names, playerprofile.ColumnGender)

	out.Rows = make([]playerprofile.PlayerMatchMetrics, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		matchID, err := parseMatchID(matchIDs[i])
		if err != nil {
			return playerprofile.MatchMetrics{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		player := strings.TrimSpace(players[i])
		if player == "" || player == "NaN" {
			return playerprofile.MatchMetrics{}, fmt.Errorf("row %d: empty player_name", i+1)
		}

		values := make([]float64, len(metricColumns))
		for j, col := range metricColumns {
			values[j] = col[i]
		}
		out.Rows = append(out.Rows, playerprofile.PlayerMatchMetrics{
			MatchID:    matchID,
			PlayerName: player,
			Team:       cell(teams, i),
			Role:       cell(roles, i),
			Gender:     cell(genders, i),
			Values:     values,
		})
	}
	return out, nil
}

func parseMatchID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	// Some exports write integer ids as floats, e.g. "3775648.0".
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid match_id %q", raw)
	}
	return int64(f), nil
}

func optionalRecords(df dataframe.DataFrame, names []string, column string) []string {
	if !contains(names, column) {
		return nil
	}
	return df.Col(column).Records()
}

func cell(records []string, i int) string {
	if i >= len(records) {
		return ""
	}
	v := strings.TrimSpace(records[i])
	if v == "NaN" {
		return ""
	}
	return v
}

func contains(values []string, v string) bool {
	for _, item := range values {
		if item == v {
			return true
		}
	}
	return false
}
