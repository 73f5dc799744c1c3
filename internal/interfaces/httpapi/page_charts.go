package httpapi

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/domain/zone"
	"github.com/riskibarqy/match-insights/internal/platform/analytics"
	"github.com/riskibarqy/match-insights/internal/platform/chart"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

func matchFigures(a usecase.MatchAnalysis) ([]figure, error) {
	builders := []func(usecase.MatchAnalysis) (figure, error){
		recoveryByMinuteFigure,
		recoveryByBinFigure,
		zoneEntriesFigure,
		zoneTotalsFigure,
		combinedFigure,
	}
	out := make([]figure, 0, len(builders))
	for _, build := range builders {
		f, err := build(a)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func recoveryByMinuteFigure(a usecase.MatchAnalysis) (figure, error) {
	byTeam := make(map[string][]chart.Point)
	for _, m := range a.RecoveryByMinute {
		byTeam[m.Team] = append(byTeam[m.Team], chart.Point{
			X:     float64(m.Minute),
			Y:     m.AverageRecoveryTime,
			Label: fmt.Sprintf("%s · minuto %d: %ss (%d recuperações)", m.Team, m.Minute, decimal(m.AverageRecoveryTime, 1), m.Recoveries),
		})
	}
	return svgFigure("Tempo médio de recuperação por minuto", "Média dos tempos de recuperação de cada equipa em cada minuto de jogo.",
		chart.LineChart{
			Title:  "Tempo médio de recuperação da posse de bola",
			XLabel: "Minuto",
			YLabel: "Segundos",
			Series: seriesByTeam(a.Teams, byTeam),
		})
}

func recoveryByBinFigure(a usecase.MatchAnalysis) (figure, error) {
	maxBin := -1
	for _, b := range a.RecoveryByBin {
		maxBin = max(maxBin, b.TimeBin)
	}
	categories := make([]string, maxBin+1)
	for i := range categories {
		categories[i] = fmt.Sprintf("%d-%d'", i*5, (i+1)*5)
	}

	index := make(map[string]int, len(a.Teams))
	series := make([]chart.BarSeries, len(a.Teams))
	for i, team := range a.Teams {
		index[team] = i
		series[i] = chart.BarSeries{Name: team, Values: make([]float64, len(categories))}
	}
	for _, b := range a.RecoveryByBin {
		if i, ok := index[b.Team]; ok {
			series[i].Values[b.TimeBin] = b.AverageRecoveryTime
		}
	}

	return svgFigure("Tempo médio de recuperação em blocos de 5 minutos", "",
		chart.BarChart{
			Title:      "Tempo médio de recuperação por intervalo de 5 minutos",
			XLabel:     "Intervalo",
			YLabel:     "Segundos",
			Categories: categories,
			Series:     series,
			Width:      960,
		})
}

func zoneEntriesFigure(a usecase.MatchAnalysis) (figure, error) {
	minutes := make([]int, 0)
	seenMinute := make(map[int]struct{})
	var teamZones []string
	seenZone := make(map[string]struct{})
	for _, e := range a.ZoneEntries {
		if _, ok := seenMinute[e.Minute]; !ok {
			seenMinute[e.Minute] = struct{}{}
			minutes = append(minutes, e.Minute)
		}
		if _, ok := seenZone[e.TeamZone]; !ok {
			seenZone[e.TeamZone] = struct{}{}
			teamZones = append(teamZones, e.TeamZone)
		}
	}
	sort.Ints(minutes)
	sort.Strings(teamZones)

	column := make(map[int]int, len(minutes))
	categories := make([]string, len(minutes))
	for i, m := range minutes {
		column[m] = i
		categories[i] = strconv.Itoa(m)
	}
	row := make(map[string]int, len(teamZones))
	series := make([]chart.BarSeries, len(teamZones))
	for i, tz := range teamZones {
		row[tz] = i
		series[i] = chart.BarSeries{Name: tz, Values: make([]float64, len(minutes))}
	}
	for _, e := range a.ZoneEntries {
		series[row[e.TeamZone]].Values[column[e.Minute]] += float64(e.Entries)
	}

	return svgFigure("Entradas em zonas de perigo por minuto", "Conduções que terminam na zona de ataque ou na grande área.",
		chart.BarChart{
			Title:      "Entradas na zona de ataque e na grande área",
			XLabel:     "Minuto",
			YLabel:     "Nº de entradas",
			Categories: categories,
			Series:     series,
			Stacked:    true,
			Width:      960,
		})
}

func zoneTotalsFigure(a usecase.MatchAnalysis) (figure, error) {
	categories := make([]string, len(a.ZoneTotals))
	finalThird := chart.BarSeries{Name: zone.FinalThird.Label(), Values: make([]float64, len(a.ZoneTotals))}
	penaltyArea := chart.BarSeries{Name: zone.PenaltyArea.Label(), Values: make([]float64, len(a.ZoneTotals))}
	for i, t := range a.ZoneTotals {
		categories[i] = t.Team
		finalThird.Values[i] = float64(t.FinalThirdEntries)
		penaltyArea.Values[i] = float64(t.PenaltyAreaEntries)
	}

	return svgFigure("Total de entradas por equipa", "",
		chart.BarChart{
			Title:      "Total de entradas em zonas de perigo",
			YLabel:     "Nº de entradas",
			Categories: categories,
			Series:     []chart.BarSeries{finalThird, penaltyArea},
			ShowValues: true,
		})
}

func combinedFigure(a usecase.MatchAnalysis) (figure, error) {
	byTeam := make(map[string][]chart.Point)
	for _, c := range a.Combined {
		byTeam[c.Team] = append(byTeam[c.Team], chart.Point{
			X:     c.AverageRecoveryTime,
			Y:     float64(c.DangerousEntries),
			Label: fmt.Sprintf("%s · minuto %d: %ss, %d entradas", c.Team, c.Minute, decimal(c.AverageRecoveryTime, 1), c.DangerousEntries),
		})
	}

	return svgFigure("Recuperação vs. entradas em zonas de perigo", "Cada ponto é um minuto em que a equipa recuperou a bola.",
		chart.ScatterChart{
			Title:  "Tempo de recuperação vs. entradas perigosas",
			XLabel: "Tempo médio de recuperação (s)",
			YLabel: "Entradas perigosas",
			Groups: seriesByTeam(a.Teams, byTeam),
		})
}

func seriesByTeam(teams []string, points map[string][]chart.Point) []chart.Series {
	out := make([]chart.Series, 0, len(teams))
	for _, team := range teams {
		if len(points[team]) == 0 {
			continue
		}
		out = append(out, chart.Series{Name: team, Points: points[team]})
	}
	return out
}

func correlationFigure(s usecase.ProfileSummary) (figure, error) {
	return svgFigure("Correlação entre variáveis", "",
		chart.Heatmap{
			Title:         "Correlação Variáveis - " + s.Profile.Title(),
			Labels:        s.Labels,
			Values:        s.Correlation,
			LowerTriangle: true,
			Width:         720,
		})
}

func histogramFigures(s usecase.ProfileSummary) ([]figure, error) {
	out := make([]figure, 0, len(s.Histograms))
	for _, hist := range s.Histograms {
		yLabel := "Nº de vezes"
		if playerprofile.IsPercentage(hist.Metric) {
			yLabel = "Percentagem"
		}
		f, err := svgFigure(hist.Label, "",
			chart.HistogramChart{
				Title:  hist.Label,
				XLabel: hist.Label,
				YLabel: yLabel,
				Bins:   chartBins(hist.Bins),
				Width:  480,
				Height: 300,
			})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func chartBins(bins []analytics.Bin) []chart.Bin {
	out := make([]chart.Bin, len(bins))
	for i, b := range bins {
		out[i] = chart.Bin(b)
	}
	return out
}

func clusterFigures(r usecase.ClusterResult, elbow []analytics.ElbowPoint) ([]figure, error) {
	builders := []func() (figure, error){
		func() (figure, error) { return projectionFigure(r) },
		func() (figure, error) { return radarFigure(r) },
		func() (figure, error) { return clusterSizeFigure(r) },
		func() (figure, error) { return genderFigure(r) },
		func() (figure, error) { return elbowFigure(r.Profile, elbow) },
	}
	out := make([]figure, 0, len(builders))
	for _, build := range builders {
		f, err := build()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func clusterName(id int) string {
	return "Cluster " + strconv.Itoa(id)
}

func projectionFigure(r usecase.ClusterResult) (figure, error) {
	groups := make([]chart.Series, len(r.Clusters))
	for i := range groups {
		groups[i] = chart.Series{Name: clusterName(i)}
	}
	for _, p := range r.Players {
		if len(p.Projection) < 2 {
			continue
		}
		groups[p.Cluster].Points = append(groups[p.Cluster].Points, chart.Point{
			X:     p.Projection[0],
			Y:     p.Projection[1],
			Label: fmt.Sprintf("%s (%s, %s) · %s", p.PlayerName, p.Team, genderLabel(p.Gender), clusterName(p.Cluster)),
		})
	}

	return svgFigure("Representação visual dos perfis", "Projeção dos jogadores nas duas primeiras componentes principais.",
		chart.ScatterChart{
			Title:  "Perfis de " + r.Profile.Title() + " (PCA)",
			XLabel: "PC1",
			YLabel: "PC2",
			Groups: groups,
			Height: 480,
		})
}

func radarFigure(r usecase.ClusterResult) (figure, error) {
	series := make([]chart.RadarSeries, len(r.Clusters))
	for i, c := range r.Clusters {
		series[i] = chart.RadarSeries{Name: clusterName(c.ID), Values: c.NormalizedMeans, Raw: c.RawMeans}
	}
	return svgFigure("Caracterização dos clusters", "",
		chart.RadarChart{
			Title:  "Perfis de Jogadores (Normalizados, valores reais na hover action)",
			Axes:   r.Labels,
			Series: series,
		})
}

func clusterSizeFigure(r usecase.ClusterResult) (figure, error) {
	categories := make([]string, len(r.Clusters))
	values := make([]float64, len(r.Clusters))
	for i, c := range r.Clusters {
		categories[i] = clusterName(c.ID)
		values[i] = float64(c.Size)
	}
	return svgFigure("Tamanho dos clusters", "",
		chart.BarChart{
			Title:      "Nº de jogadores em cada cluster",
			YLabel:     "Nº jogadores",
			Categories: categories,
			Series:     []chart.BarSeries{{Name: "Jogadores", Values: values}},
			ShowValues: true,
		})
}

func genderFigure(r usecase.ClusterResult) (figure, error) {
	var genders []string
	seen := make(map[string]struct{})
	for _, c := range r.Clusters {
		for _, g := range c.Genders {
			if _, ok := seen[g.Gender]; !ok {
				seen[g.Gender] = struct{}{}
				genders = append(genders, g.Gender)
			}
		}
	}
	sort.Strings(genders)

	categories := make([]string, len(r.Clusters))
	series := make([]chart.BarSeries, len(genders))
	for i, g := range genders {
		series[i] = chart.BarSeries{Name: genderLabel(g), Values: make([]float64, len(r.Clusters))}
	}
	for ci, c := range r.Clusters {
		categories[ci] = clusterName(c.ID)
		for _, g := range c.Genders {
			series[sort.SearchStrings(genders, g.Gender)].Values[ci] = g.Percent
		}
	}

	return svgFigure("Distribuição do género dos clusters", "",
		chart.BarChart{
			Title:       "Percentagem de cada Género por Cluster",
			YLabel:      "Percentagem",
			Categories:  categories,
			Series:      series,
			Stacked:     true,
			ValueSuffix: "%",
			ShowValues:  true,
		})
}

func elbowFigure(profile playerprofile.Profile, points []analytics.ElbowPoint) (figure, error) {
	line := chart.Series{Name: "Inércia"}
	for _, p := range points {
		line.Points = append(line.Points, chart.Point{
			X:     float64(p.K),
			Y:     p.Inertia,
			Label: fmt.Sprintf("k = %d: inércia %s", p.K, decimal(p.Inertia, 1)),
		})
	}
	return svgFigure("Elbow method", "A inércia diminui com o número de clusters; o cotovelo da curva indica um bom valor de k.",
		chart.LineChart{
			Title:  "Elbow method - " + profile.Title(),
			XLabel: "Nº de clusters (k)",
			YLabel: "Inércia",
			Series: []chart.Series{line},
		})
}
