package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	qb "github.com/riskibarqy/match-insights/internal/platform/querybuilder"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

// insertBatchRows keeps each INSERT well under the 65535 bind parameter limit.
const insertBatchRows = 1000

type PlayerMetricsRepository struct {
	db *sqlx.DB
}

func NewPlayerMetricsRepository(db *sqlx.DB) *PlayerMetricsRepository {
	return &PlayerMetricsRepository{db: db}
}

func (r *PlayerMetricsRepository) ListMatchMetrics(ctx context.Context, profile playerprofile.Profile) (playerprofile.MatchMetrics, error) {
	query, args, err := qb.Select("profile", "match_id", "player_name", "team", "role", "metric", "metric_position", "value").
		From(playerMatchMetricsTable).
		Where(qb.Eq("profile", string(profile))).
		OrderBy("match_id", "player_name", "metric_position").
		ToSQL()
	if err != nil {
		return playerprofile.MatchMetrics{}, fmt.Errorf("build select player metrics query: %w", err)
	}

	var rows []playerMatchMetricTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return playerprofile.MatchMetrics{}, fmt.Errorf("select player metrics profile=%s: %w", profile, err)
	}
	if len(rows) == 0 {
		return playerprofile.MatchMetrics{}, fmt.Errorf("%w: no stored metrics for profile %s", usecase.ErrNotFound, profile)
	}

	return pivotMetricRows(profile, rows), nil
}

// ReplaceMatchMetrics swaps every stored row of the table's profile for the
// given table in one transaction and returns the number of rows written.
func (r *PlayerMetricsRepository) ReplaceMatchMetrics(ctx context.Context, table playerprofile.MatchMetrics) (int, error) {
	rows := unpivotMetricRows(table)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace player metrics: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := qb.DeleteFrom(playerMatchMetricsTable).
		Where(qb.Eq("profile", string(table.Profile))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete player metrics query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("delete player metrics profile=%s: %w", table.Profile, err)
	}

	for start := 0; start < len(rows); start += insertBatchRows {
		end := min(start+insertBatchRows, len(rows))
		query, args, err := qb.InsertModels(playerMatchMetricsTable, rows[start:end], "")
		if err != nil {
			return 0, fmt.Errorf("build insert player metrics query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert player metrics batch=%d: %w", start/insertBatchRows, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace player metrics: %w", err)
	}
	return len(rows), nil
}

func unpivotMetricRows(table playerprofile.MatchMetrics) []playerMatchMetricTableModel {
	out := make([]playerMatchMetricTableModel, 0, len(table.Rows)*len(table.Metrics))
	for _, row := range table.Rows {
		for pos, metric := range table.Metrics {
			value := math.NaN()
			if pos < len(row.Values) {
				value = row.Values[pos]
			}
			out = append(out, playerMatchMetricTableModel{
				Profile:        string(table.Profile),
				MatchID:        row.MatchID,
				PlayerName:     row.PlayerName,
				Team:           row.Team,
				Role:           row.Role,
				Metric:         metric,
				MetricPosition: pos,
				Value:          sql.NullFloat64{Float64: value, Valid: !math.IsNaN(value)},
			})
		}
	}
	return out
}

func pivotMetricRows(profile playerprofile.Profile, rows []playerMatchMetricTableModel) playerprofile.MatchMetrics {
	positions := make(map[string]int)
	for _, row := range rows {
		if current, ok := positions[row.Metric]; !ok || row.MetricPosition < current {
			positions[row.Metric] = row.MetricPosition
		}
	}
	metrics := make([]string, 0, len(positions))
	for metric := range positions {
		metrics = append(metrics, metric)
	}
	sort.Slice(metrics, func(i, j int) bool {
		if positions[metrics[i]] != positions[metrics[j]] {
			return positions[metrics[i]] < positions[metrics[j]]
		}
		return metrics[i] < metrics[j]
	})
	column := make(map[string]int, len(metrics))
	for i, metric := range metrics {
		column[metric] = i
	}

	type rowKey struct {
		matchID int64
		player  string
	}
	index := make(map[rowKey]int)
	out := playerprofile.MatchMetrics{Profile: profile, Metrics: metrics}
	for _, row := range rows {
		key := rowKey{matchID: row.MatchID, player: row.PlayerName}
		i, ok := index[key]
		if !ok {
			values := make([]float64, len(metrics))
			for j := range values {
				values[j] = math.NaN()
			}
			out.Rows = append(out.Rows, playerprofile.PlayerMatchMetrics{
				MatchID:    row.MatchID,
				PlayerName: row.PlayerName,
				Team:       row.Team,
				Role:       row.Role,
				Values:     values,
			})
			i = len(out.Rows) - 1
			index[key] = i
		}
		if row.Value.Valid {
			out.Rows[i].Values[column[row.Metric]] = row.Value.Float64
		}
	}
	return out
}
