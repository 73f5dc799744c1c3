package httpapi

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/riskibarqy/match-insights/internal/domain/zone"
	"github.com/riskibarqy/match-insights/internal/platform/analytics"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

// decimal formats v with a decimal comma, the way the dashboard text reads.
func decimal(v float64, places int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', places, 64), ".", ",", 1)
}

func matchIntro(m matchevent.Match, featured bool) []string {
	title := fmt.Sprintf("%s - %s", m.HomeTeam, m.AwayTeam)
	when := ""
	if !m.MatchDate.IsZero() {
		when = fmt.Sprintf(" (%s)", m.MatchDate.Format("02/01/2006"))
	}

	out := []string{
		fmt.Sprintf("Jogo %s%s, a contar para %s, época %s. Resultado final: %d-%d.",
			title, when, m.CompetitionName, m.SeasonName, m.HomeScore, m.AwayScore),
	}
	if featured {
		out = append(out, "Este jogo foi escolhido automaticamente por ser o resultado mais desnivelado da época: "+
			"a ideia é que as diferenças entre as duas equipas fiquem mais evidentes nos dados. Vamos ver o que os dados nos dizem...")
	}
	return out
}

func recoveryNarrative(summary []possession.TeamRecoverySummary) []string {
	if len(summary) == 0 {
		return []string{"Não foram encontradas mudanças de posse com tempo de recuperação positivo neste jogo."}
	}

	out := []string{
		"O tempo de recuperação mede quantos segundos passam desde que uma equipa perde a posse de bola até a voltar a ter. " +
			"Cada mudança da equipa em posse gera um registo; mudanças com tempo nulo ou negativo (mudanças de período) são ignoradas.",
	}
	for _, s := range summary {
		out = append(out, fmt.Sprintf("%s recuperou a posse %d vezes, em média em %ss (a recuperação mais rápida demorou %ds).",
			s.Team, s.Recoveries, decimal(s.AverageRecoveryTime, 1), s.FastestRecovery))
	}

	if len(summary) >= 2 {
		sorted := append([]possession.TeamRecoverySummary(nil), summary...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].AverageRecoveryTime < sorted[j].AverageRecoveryTime })
		fast, slow := sorted[0], sorted[len(sorted)-1]
		if diff := slow.AverageRecoveryTime - fast.AverageRecoveryTime; diff > 0 {
			out = append(out, fmt.Sprintf("%s foi mais rápida a recuperar a bola, com uma diferença média de %ss face a %s.",
				fast.Team, decimal(diff, 1), slow.Team))
		}
	}
	return out
}

func zoneNarrative(totals []usecase.TeamZoneTotal) []string {
	out := []string{
		"Uma entrada na zona de ataque é uma condução que termina a partir dos 80 metros do campo; " +
			"uma entrada na grande área termina a partir dos 102 metros, entre as linhas laterais da área (18 a 62).",
	}
	if len(totals) == 0 {
		return append(out, "Nenhuma das equipas conduziu a bola até zonas de perigo neste jogo.")
	}
	for _, t := range totals {
		out = append(out, fmt.Sprintf("%s: %d entradas na zona de ataque e %d na grande área.",
			t.Team, t.FinalThirdEntries, t.PenaltyAreaEntries))
	}
	return out
}

// combinedNarrative reports the Pearson correlation between recovery time and
// dangerous entries per team and minute.
func combinedNarrative(combined []zone.Combined) []string {
	var recovery, danger []float64
	for _, c := range combined {
		recovery = append(recovery, c.AverageRecoveryTime)
		danger = append(danger, float64(c.DangerousEntries))
	}
	if len(recovery) < 3 {
		return []string{"Não há minutos suficientes com as duas métricas para as comparar."}
	}

	x := make([][]float64, len(recovery))
	for i := range recovery {
		x[i] = []float64{recovery[i], danger[i]}
	}
	corr, err := analytics.CorrelationMatrix(x)
	if err != nil || math.IsNaN(corr[0][1]) {
		return []string{"Não foi possível calcular a correlação entre as duas métricas."}
	}

	r := corr[0][1]
	strength := "fraca"
	switch {
	case math.Abs(r) >= 0.7:
		strength = "forte"
	case math.Abs(r) >= 0.4:
		strength = "moderada"
	}
	direction := "positiva"
	if r < 0 {
		direction = "negativa"
	}
	return []string{fmt.Sprintf(
		"Cruzando as duas métricas por equipa e minuto (%d pares), a correlação entre o tempo médio de recuperação "+
			"e as entradas em zonas de perigo é %s (r = %s), uma relação %s.",
		len(recovery), direction, decimal(r, 2), strength)}
}

func clusterNarrative(result usecase.ClusterResult) []string {
	explained := 0.0
	for _, r := range result.ExplainedRatio {
		explained += r
	}

	space := "nos dados padronizados"
	if result.Params.Space == usecase.ClusterOnComponents {
		space = fmt.Sprintf("nas %d componentes principais", result.Params.Components)
	}
	out := []string{fmt.Sprintf(
		"K-means com %d clusters aplicado %s: silhouette score de %s. "+
			"As %d componentes principais explicam %s%% da variância.",
		result.Params.K, space, decimal(result.Silhouette, 2),
		len(result.ExplainedRatio), decimal(explained*100, 1))}

	for _, c := range result.Clusters {
		if len(c.Genders) == 0 {
			continue
		}
		top := c.Genders[0]
		for _, g := range c.Genders[1:] {
			if g.Percent > top.Percent {
				top = g
			}
		}
		if top.Percent >= 100 {
			out = append(out, fmt.Sprintf("O cluster %d é composto apenas por jogadores do género %s.", c.ID, genderLabel(top.Gender)))
			continue
		}
		out = append(out, fmt.Sprintf("O cluster %d tem %d jogadores, com predominância %s (%s%%).",
			c.ID, c.Size, genderAdjective(top.Gender), decimal(top.Percent, 1)))
	}
	return out
}

func genderLabel(g string) string {
	switch g {
	case "female":
		return "feminino"
	case "male":
		return "masculino"
	default:
		return "desconhecido"
	}
}

func genderAdjective(g string) string {
	switch g {
	case "female":
		return "feminina"
	case "male":
		return "masculina"
	default:
		return "de género desconhecido"
	}
}
