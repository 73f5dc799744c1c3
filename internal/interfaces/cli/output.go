package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/riskibarqy/match-insights/internal/domain/zone"
	"github.com/riskibarqy/match-insights/internal/platform/analytics"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

func writeJSON(w io.Writer, payload any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func fmtFloat(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func competitionsTable(w io.Writer, items []matchevent.Competition) error {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d:%d", c.CompetitionID, c.SeasonID),
			c.CompetitionName,
			c.SeasonName,
			c.CountryName,
			c.CompetitionGender,
		})
	}
	return renderTable(w, []string{"Key", "Competition", "Season", "Country", "Gender"}, rows)
}

func matchesTable(w io.Writer, items []matchevent.Match) error {
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		rows = append(rows, []string{
			strconv.FormatInt(m.MatchID, 10),
			m.MatchDate.Format("2006-01-02"),
			m.HomeTeam,
			fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore),
			m.AwayTeam,
		})
	}
	return renderTable(w, []string{"Match", "Date", "Home", "Score", "Away"}, rows)
}

func recoverySummaryTable(w io.Writer, items []possession.TeamRecoverySummary) error {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			s.Team,
			strconv.Itoa(s.Recoveries),
			fmtFloat(s.AverageRecoveryTime, 1),
			strconv.Itoa(s.FastestRecovery),
		})
	}
	return renderTable(w, []string{"Team", "Recoveries", "Avg Seconds", "Fastest"}, rows)
}

func recoveryByMinuteTable(w io.Writer, items []possession.TeamMinuteRecovery) error {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{
			s.Team,
			strconv.Itoa(s.Minute),
			fmtFloat(s.AverageRecoveryTime, 1),
		})
	}
	return renderTable(w, []string{"Team", "Minute", "Avg Seconds"}, rows)
}

func zoneTotalsTable(w io.Writer, items []usecase.TeamZoneTotal) error {
	rows := make([][]string, 0, len(items))
	for _, t := range items {
		rows = append(rows, []string{
			t.Team,
			strconv.Itoa(t.FinalThirdEntries),
			strconv.Itoa(t.PenaltyAreaEntries),
		})
	}
	return renderTable(w, []string{"Team", "Final Third", "Penalty Area"}, rows)
}

func combinedTable(w io.Writer, items []zone.Combined) error {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.Team,
			strconv.Itoa(c.Minute),
			fmtFloat(c.AverageRecoveryTime, 1),
			strconv.Itoa(c.DangerousEntries),
		})
	}
	return renderTable(w, []string{"Team", "Minute", "Avg Recovery", "Dangerous Entries"}, rows)
}

func overviewTable(w io.Writer, overview usecase.CompetitionOverview) error {
	rows := make([][]string, 0, len(overview.Teams))
	for _, t := range overview.Teams {
		rows = append(rows, []string{
			t.Team,
			strconv.Itoa(t.Matches),
			strconv.Itoa(t.Recoveries),
			fmtFloat(t.AverageRecoveryTime, 1),
			fmtFloat(t.FinalThirdPerMatch, 2),
			fmtFloat(t.PenaltyAreaPerMatch, 2),
		})
	}
	if err := renderTable(w, []string{"Team", "Matches", "Recoveries", "Avg Seconds", "Final Third/Match", "Penalty Area/Match"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %d/%d matches analysed, %d failed\n",
		overview.Competition, overview.Analysed, overview.Matches, len(overview.Failures))
	return err
}

func clustersTable(w io.Writer, result usecase.ClusterResult) error {
	rows := make([][]string, 0, len(result.Clusters))
	for _, c := range result.Clusters {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			strconv.Itoa(c.Size),
			metricNames(c.Strengths),
			metricNames(c.Weaknesses),
			genderShares(c.Genders),
		})
	}
	if err := renderTable(w, []string{"Cluster", "Players", "Strongest", "Weakest", "Gender"}, rows); err != nil {
		return err
	}

	explained := make([]string, 0, len(result.ExplainedRatio))
	for _, ratio := range result.ExplainedRatio {
		explained = append(explained, fmtFloat(ratio*100, 1)+"%")
	}
	_, err := fmt.Fprintf(w, "k=%d components=%d space=%s silhouette=%s inertia=%s explained=[%s]\n",
		result.Params.K, result.Params.Components, result.Params.Space,
		fmtFloat(result.Silhouette, 3), fmtFloat(result.Inertia, 2), strings.Join(explained, " "))
	return err
}

func clusteredPlayersTable(w io.Writer, players []usecase.ClusteredPlayer) error {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		projection := make([]string, 0, len(p.Projection))
		for _, v := range p.Projection {
			projection = append(projection, fmtFloat(v, 2))
		}
		rows = append(rows, []string{
			p.PlayerName,
			p.Team,
			p.Role,
			strconv.Itoa(p.Cluster),
			strings.Join(projection, " "),
		})
	}
	return renderTable(w, []string{"Player", "Team", "Role", "Cluster", "PCA"}, rows)
}

func elbowTable(w io.Writer, points []analytics.ElbowPoint) error {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{strconv.Itoa(p.K), fmtFloat(p.Inertia, 2)})
	}
	return renderTable(w, []string{"K", "Inertia"}, rows)
}

func metricNames(scores []usecase.MetricScore) string {
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.Label)
	}
	return strings.Join(names, ", ")
}

func genderShares(shares []usecase.GenderShare) string {
	parts := make([]string, 0, len(shares))
	for _, s := range shares {
		parts = append(parts, fmt.Sprintf("%s %s%%", s.Gender, fmtFloat(s.Percent, 0)))
	}
	return strings.Join(parts, ", ")
}
