package playerprofile

var displayLabels = map[string]string{
	"xg":                          "xG",
	"shots":                       "Remates",
	"key_passes":                  "Passes para Finalizações",
	"progressive_passes_received": "Passes Progressivos Recebidos",
	"pressures":                   "Pressões",
	"touches_in_box":              "Toques na Grande Área",

	"clearances":            "Afastamentos de zonas perigosas",
	"interceptions":         "Interceções",
	"tackles_won":           "Desarmes Vencidos",
	"aerial_duels_won":      "Duelos Aéreos Vencidos",
	"pass_completion_pct":   "Percentagem de Passes Bem Sucedidos",
	"long_passes_completed": "Passes Longos Bem Sucedidos",
	"fouls_committed":       "Faltas Cometidas",
	"recovery_time":         "Tempo de Recuperação de Bola",
	"final_third_entries":   "Entradas na Zona de Ataque",
	"penalty_area_entries":  "Entradas na Grande Área",

	ColumnMatchID:    "Jogo",
	ColumnPlayerName: "Jogador",
	ColumnTeam:       "Equipa",
	ColumnRole:       "Posição",
	ColumnGender:     "Género",
}

var descriptions = map[string]string{
	"xg":                          "Média do xG (expected goals) por jogador e jogo, calculado a partir de eventos de remate.",
	"shots":                       "Média de remates feitos por um jogador em cada jogo.",
	"key_passes":                  "Média por jogo de passes que resultaram diretamente em finalizações.",
	"progressive_passes_received": "Média de passes recebidos com ganho de mais de 30 metros no campo.",
	"touches_in_box":              "Média de toques na bola dentro da grande área adversária, através de passes.",
	"clearances":                  "Média de afastamentos da bola da zona de perigo.",
	"interceptions":               "Média de interceções realizadas.",
	"tackles_won":                 "Média de desarmes feitos.",
	"aerial_duels_won":            "Média de passes aéreos recebidos com sucesso.",
	"pass_completion_pct":         "Percentagem média de passes feitos com sucesso.",
	"long_passes_completed":       "Média de passes com mais de 30m de distância feitos com sucesso.",
	"fouls_committed":             "Número médio de faltas cometidas.",
	"pressures":                   "Número médio de vezes em que o jogador pressionou o adversário.",
	"recovery_time":               "Tempo médio para recuperar a posse de bola após perdê-la, em segundos.",
	"final_third_entries":         "Número médio de vezes em que o jogador levou a bola até à zona de ataque.",
	"penalty_area_entries":        "Número médio de vezes em que o jogador levou a bola até à grande área.",
}

// DisplayLabel returns the Portuguese caption for a column, or the column name
// itself when no caption is known.
func DisplayLabel(column string) string {
	if label, ok := displayLabels[column]; ok {
		return label
	}
	return column
}

func DisplayLabels(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = DisplayLabel(c)
	}
	return out
}

// IsPercentage reports whether the metric is expressed as a percentage.
func IsPercentage(metric string) bool {
	return metric == "pass_completion_pct"
}

// Description explains a metric on the profiles page. Unknown metrics have no
// description.
func Description(metric string) string {
	return descriptions[metric]
}
