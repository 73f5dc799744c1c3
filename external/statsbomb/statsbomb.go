package statsbomb

import (
	"strings"
	"time"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
)

type competitionItem struct {
	CompetitionID     int64  `json:"competition_id"`
	SeasonID          int64  `json:"season_id"`
	CountryName       string `json:"country_name"`
	CompetitionName   string `json:"competition_name"`
	CompetitionGender string `json:"competition_gender"`
	SeasonName        string `json:"season_name"`
}

func (c competitionItem) toDomain() matchevent.Competition {
	return matchevent.Competition{
		CompetitionID:     c.CompetitionID,
		SeasonID:          c.SeasonID,
		CompetitionName:   strings.TrimSpace(c.CompetitionName),
		SeasonName:        strings.TrimSpace(c.SeasonName),
		CountryName:       strings.TrimSpace(c.CountryName),
		CompetitionGender: strings.TrimSpace(c.CompetitionGender),
	}
}

type matchItem struct {
	MatchID     int64  `json:"match_id"`
	MatchDate   string `json:"match_date"`
	HomeScore   *int   `json:"home_score"`
	AwayScore   *int   `json:"away_score"`
	MatchWeek   int    `json:"match_week"`
	MatchStatus string `json:"match_status"`
	Competition struct {
		CompetitionID   int64  `json:"competition_id"`
		CompetitionName string `json:"competition_name"`
	} `json:"competition"`
	Season struct {
		SeasonID   int64  `json:"season_id"`
		SeasonName string `json:"season_name"`
	} `json:"season"`
	HomeTeam struct {
		Name   string `json:"home_team_name"`
		Gender string `json:"home_team_gender"`
	} `json:"home_team"`
	AwayTeam struct {
		Name   string `json:"away_team_name"`
		Gender string `json:"away_team_gender"`
	} `json:"away_team"`
}

func (m matchItem) toDomain() matchevent.Match {
	out := matchevent.Match{
		MatchID:         m.MatchID,
		CompetitionID:   m.Competition.CompetitionID,
		SeasonID:        m.Season.SeasonID,
		CompetitionName: strings.TrimSpace(m.Competition.CompetitionName),
		SeasonName:      strings.TrimSpace(m.Season.SeasonName),
		HomeTeam:        strings.TrimSpace(m.HomeTeam.Name),
		AwayTeam:        strings.TrimSpace(m.AwayTeam.Name),
		HomeTeamGender:  strings.TrimSpace(m.HomeTeam.Gender),
		MatchWeek:       m.MatchWeek,
	}
	if parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(m.MatchDate)); err == nil {
		out.MatchDate = parsed
	}
	if m.HomeScore != nil {
		out.HomeScore = *m.HomeScore
	}
	if m.AwayScore != nil {
		out.AwayScore = *m.AwayScore
	}
	return out
}

type namedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type eventItem struct {
	ID             string    `json:"id"`
	Index          int       `json:"index"`
	Period         int       `json:"period"`
	Minute         int       `json:"minute"`
	Second         int       `json:"second"`
	Possession     int       `json:"possession"`
	Type           namedRef  `json:"type"`
	Team           namedRef  `json:"team"`
	PossessionTeam namedRef  `json:"possession_team"`
	Player         *namedRef `json:"player"`
	Location       []float64 `json:"location"`
	Carry          *struct {
		EndLocation []float64 `json:"end_location"`
	} `json:"carry"`
}

func (e eventItem) toDomain() matchevent.Event {
	out := matchevent.Event{
		ID:             e.ID,
		Index:          e.Index,
		Period:         e.Period,
		Minute:         e.Minute,
		Second:         e.Second,
		Type:           e.Type.Name,
		Team:           e.Team.Name,
		PossessionTeam: e.PossessionTeam.Name,
		Possession:     e.Possession,
		Location:       toLocation(e.Location),
	}
	if e.Player != nil {
		out.Player = e.Player.Name
	}
	if e.Carry != nil {
		out.CarryEnd = toLocation(e.Carry.EndLocation)
	}
	return out
}

func toLocation(coords []float64) *matchevent.Location {
	if len(coords) < 2 {
		return nil
	}
	return &matchevent.Location{X: coords[0], Y: coords[1]}
}
