package postgres

import "database/sql"

const playerMatchMetricsTable = "player_match_metrics"

// playerMatchMetricTableModel stores one metric of one player in one match.
type playerMatchMetricTableModel struct {
	Profile        string          `db:"profile"`
	MatchID        int64           `db:"match_id"`
	PlayerName     string          `db:"player_name"`
	Team           string          `db:"team"`
	Role           string          `db:"role"`
	Metric         string          `db:"metric"`
	MetricPosition int             `db:"metric_position"`
	Value          sql.NullFloat64 `db:"value"`
}
