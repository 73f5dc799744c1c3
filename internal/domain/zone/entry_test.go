package zone

import (
	"testing"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/smartystreets/goconvey/convey"
)

func carry(team string, minute, second int, x, y float64) matchevent.Event {
	return matchevent.Event{
		Type:           matchevent.TypeCarry,
		Team:           team,
		PossessionTeam: team,
		Minute:         minute,
		Second:         second,
		CarryEnd:       &matchevent.Location{X: x, Y: y},
	}
}

func TestClassify(t *testing.T) {
	convey.Convey("Given carries around the zone thresholds", t, func() {
		cases := []struct {
			x, y        float64
			finalThird  bool
			penaltyArea bool
		}{
			{x: 79.9, y: 40, finalThird: false, penaltyArea: false},
			{x: 80, y: 40, finalThird: true, penaltyArea: false},
			{x: 101.9, y: 40, finalThird: true, penaltyArea: false},
			{x: 102, y: 18, finalThird: true, penaltyArea: true},
			{x: 102, y: 62, finalThird: true, penaltyArea: true},
			{x: 110, y: 17.9, finalThird: true, penaltyArea: false},
			{x: 110, y: 62.1, finalThird: true, penaltyArea: false},
		}

		convey.Convey("Then the flags follow the inclusive bounds", func() {
			for _, tc := range cases {
				c, ok := Classify(carry("A", 10, 0, tc.x, tc.y))
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(c.FinalThird, convey.ShouldEqual, tc.finalThird)
				convey.So(c.PenaltyArea, convey.ShouldEqual, tc.penaltyArea)
				convey.So(c.Minute, convey.ShouldEqual, 10)
			}
		})
	})

	convey.Convey("Given events that are not carries with an end location", t, func() {
		pass := matchevent.Event{Type: "Pass", Team: "A", Minute: 1, CarryEnd: &matchevent.Location{X: 110, Y: 40}}
		bare := matchevent.Event{Type: matchevent.TypeCarry, Team: "A", Minute: 1}

		convey.Convey("Then they are not classified", func() {
			_, ok := Classify(pass)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = Classify(bare)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestEntriesAndCounts(t *testing.T) {
	convey.Convey("Given a short sequence of carries", t, func() {
		events := []matchevent.Event{
			carry("Arsenal WFC", 3, 10, 85, 40),
			carry("Arsenal WFC", 3, 50, 105, 30),
			carry("Arsenal WFC", 4, 5, 60, 30),
			carry("Chelsea FCW", 3, 20, 110, 70),
			{Type: "Shot", Team: "Chelsea FCW", Minute: 3, Second: 30},
		}

		convey.Convey("When entries are listed", func() {
			entries := Entries(events)

			convey.Convey("Then a penalty-area carry is listed under both zones", func() {
				convey.So(entries, convey.ShouldHaveLength, 4)
				totals := TeamTotals(entries)
				convey.So(totals["Arsenal WFC"][FinalThird], convey.ShouldEqual, 2)
				convey.So(totals["Arsenal WFC"][PenaltyArea], convey.ShouldEqual, 1)
				convey.So(totals["Chelsea FCW"][FinalThird], convey.ShouldEqual, 1)
				convey.So(totals["Chelsea FCW"][PenaltyArea], convey.ShouldEqual, 0)
			})

			convey.Convey("Then counts group by minute, team and zone", func() {
				counts := CountByMinute(entries)
				convey.So(counts, convey.ShouldHaveLength, 3)
				convey.So(counts[0], convey.ShouldResemble, MinuteCount{
					Minute: 3, Team: "Arsenal WFC", Zone: PenaltyArea, TeamZone: "Arsenal WFC - Grande Área", Entries: 1,
				})
				convey.So(counts[1], convey.ShouldResemble, MinuteCount{
					Minute: 3, Team: "Arsenal WFC", Zone: FinalThird, TeamZone: "Arsenal WFC - Zona de Ataque", Entries: 2,
				})
				convey.So(counts[2].TeamZone, convey.ShouldEqual, "Chelsea FCW - Zona de Ataque")
			})
		})

		convey.Convey("When dangerous carries are summed", func() {
			danger := DangerousByTeamMinute(events)

			convey.Convey("Then minutes without entries are kept at zero", func() {
				convey.So(danger, convey.ShouldResemble, []TeamMinuteDanger{
					{Team: "Arsenal WFC", Minute: 3, DangerousEntries: 3},
					{Team: "Arsenal WFC", Minute: 4, DangerousEntries: 0},
					{Team: "Chelsea FCW", Minute: 3, DangerousEntries: 1},
				})
			})

			convey.Convey("Then the join keeps only matching team-minutes", func() {
				recoveries := []possession.TeamMinuteRecovery{
					{Team: "Arsenal WFC", Minute: 3, AverageRecoveryTime: 12.5, Recoveries: 2},
					{Team: "Arsenal WFC", Minute: 7, AverageRecoveryTime: 4, Recoveries: 1},
					{Team: "Chelsea FCW", Minute: 3, AverageRecoveryTime: 30, Recoveries: 1},
				}
				convey.So(Combine(recoveries, danger), convey.ShouldResemble, []Combined{
					{Team: "Arsenal WFC", Minute: 3, AverageRecoveryTime: 12.5, DangerousEntries: 3},
					{Team: "Chelsea FCW", Minute: 3, AverageRecoveryTime: 30, DangerousEntries: 1},
				})
			})
		})
	})
}
