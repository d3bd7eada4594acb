package schedule_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/schedule"
	"github.com/okian/pong/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("m%d", n)
	}
}

func pairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "-")
}

func TestRoundRobin(t *testing.T) {
	Convey("Given four teams", t, func() {
		pairings := schedule.RoundRobin([]string{"A", "B", "C", "D"})

		Convey("Then six matches are generated in three rounds", func() {
			So(pairings, ShouldHaveLength, 6)
			So(pairings[0], ShouldResemble, schedule.Pairing{Round: 1, Home: "A", Away: "D"})
			So(pairings[1], ShouldResemble, schedule.Pairing{Round: 1, Home: "B", Away: "C"})
			So(pairings[2], ShouldResemble, schedule.Pairing{Round: 2, Home: "A", Away: "C"})
			So(pairings[3], ShouldResemble, schedule.Pairing{Round: 2, Home: "D", Away: "B"})
			So(pairings[4], ShouldResemble, schedule.Pairing{Round: 3, Home: "A", Away: "B"})
			So(pairings[5], ShouldResemble, schedule.Pairing{Round: 3, Home: "C", Away: "D"})
		})
	})

	Convey("Given five teams", t, func() {
		group := []string{"A", "B", "C", "D", "E"}
		pairings := schedule.RoundRobin(group)

		Convey("Then the bye is padded in and never returned", func() {
			So(pairings, ShouldHaveLength, 10)
			for _, p := range pairings {
				So(p.Home, ShouldNotBeBlank)
				So(p.Away, ShouldNotBeBlank)
			}
		})

		Convey("And every team sits out exactly one of the five rounds", func() {
			perTeam := map[string]int{}
			for _, p := range pairings {
				So(p.Round, ShouldBeBetweenOrEqual, 1, 5)
				perTeam[p.Home]++
				perTeam[p.Away]++
			}
			for _, id := range group {
				So(perTeam[id], ShouldEqual, 4)
			}
		})
	})

	Convey("Given groups of every size up to twelve", t, func() {
		for n := 0; n <= 12; n++ {
			group := make([]string, n)
			for i := range group {
				group[i] = fmt.Sprintf("t%d", i)
			}
			pairings := schedule.RoundRobin(group)

			So(pairings, ShouldHaveLength, n*(n-1)/2)
			seen := map[string]bool{}
			for _, p := range pairings {
				So(p.Home, ShouldNotEqual, p.Away)
				key := pairKey(p.Home, p.Away)
				So(seen[key], ShouldBeFalse)
				seen[key] = true
			}

			Convey(fmt.Sprintf("Regenerating %d teams yields the same pairings", n), func() {
				So(schedule.RoundRobin(group), ShouldResemble, pairings)
			})
		}
	})
}

func TestGroupMatches(t *testing.T) {
	Convey("Given two groups", t, func() {
		matches := schedule.GroupMatches([][]string{{"A", "B", "C"}, {"D", "E"}}, sequentialIDs())

		Convey("Then each group plays its own round robin", func() {
			So(matches, ShouldHaveLength, 4)
			So(matches[0].Group, ShouldEqual, 0)
			So(matches[3].Group, ShouldEqual, 1)
			So(pairKey(matches[3].Team1ID, matches[3].Team2ID), ShouldEqual, "D-E")
			So(matches[3].ID, ShouldEqual, "m4")
			So(matches[3].Completed, ShouldBeFalse)
		})
	})
}

func TestSeedOrder(t *testing.T) {
	Convey("Seed order pairs s with size+1-s", t, func() {
		So(schedule.SeedOrder(2), ShouldResemble, []int{1, 2})
		So(schedule.SeedOrder(4), ShouldResemble, []int{1, 4, 2, 3})
		So(schedule.SeedOrder(8), ShouldResemble, []int{1, 8, 4, 5, 2, 7, 3, 6})
	})
}

func TestBracket(t *testing.T) {
	Convey("Given four seeds", t, func() {
		matches, err := schedule.Bracket([]string{"s1", "s2", "s3", "s4"}, false, sequentialIDs())
		So(err, ShouldBeNil)

		Convey("Then round 1 pairs seeds in order and round 2 is one placeholder", func() {
			So(matches, ShouldHaveLength, 3)
			So(matches[0].Round, ShouldEqual, 1)
			So(matches[0].Position, ShouldEqual, 0)
			So(matches[0].Team1ID, ShouldEqual, "s1")
			So(matches[0].Team2ID, ShouldEqual, "s2")
			So(matches[1].Position, ShouldEqual, 1)
			So(matches[1].Team1ID, ShouldEqual, "s3")
			So(matches[1].Team2ID, ShouldEqual, "s4")
			So(matches[2].Round, ShouldEqual, 2)
			So(matches[2].HasTeams(), ShouldBeFalse)
			So(matches[2].Team1ID, ShouldBeEmpty)
		})
	})

	Convey("Given eight seeds and a third-place playoff", t, func() {
		seeds := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		matches, err := schedule.Bracket(seeds, true, sequentialIDs())
		So(err, ShouldBeNil)

		Convey("Then each round halves and the playoff sits in the final round", func() {
			perRound := map[int]int{}
			var third *model.KnockoutMatch
			for _, m := range matches {
				if m.ThirdPlace {
					third = m
					continue
				}
				perRound[m.Round]++
			}
			So(perRound, ShouldResemble, map[int]int{1: 4, 2: 2, 3: 1})
			So(third, ShouldNotBeNil)
			So(third.Round, ShouldEqual, 3)
		})
	})

	Convey("Given five seeds", t, func() {
		seeds := []string{"1", "2", "3", "4", "5"}
		matches, err := schedule.Bracket(seeds, false, sequentialIDs())
		So(err, ShouldBeNil)

		Convey("Then only seeds four and five play in round 1", func() {
			var round1 []*model.KnockoutMatch
			round2 := map[int]*model.KnockoutMatch{}
			for _, m := range matches {
				switch m.Round {
				case 1:
					round1 = append(round1, m)
				case 2:
					round2[m.Position] = m
				}
			}
			So(round1, ShouldHaveLength, 1)
			So(round1[0].Position, ShouldEqual, 1)
			So(pairKey(round1[0].Team1ID, round1[0].Team2ID), ShouldEqual, "4-5")

			Convey("And the top seeds start in round 2", func() {
				So(round2[0].Team1ID, ShouldEqual, "1")
				So(round2[0].Team2ID, ShouldBeEmpty)
				So(round2[1].Team1ID, ShouldEqual, "2")
				So(round2[1].Team2ID, ShouldEqual, "3")
			})
		})
	})

	Convey("Given three seeds and a third-place playoff", t, func() {
		matches, err := schedule.Bracket([]string{"1", "2", "3"}, true, sequentialIDs())
		So(err, ShouldBeNil)

		Convey("Then no playoff is added since only one semifinal is played", func() {
			So(matches, ShouldHaveLength, 2)
			for _, m := range matches {
				So(m.ThirdPlace, ShouldBeFalse)
			}
		})
	})

	Convey("Given four seeds and a third-place playoff", t, func() {
		matches, err := schedule.Bracket([]string{"1", "2", "3", "4"}, true, sequentialIDs())
		So(err, ShouldBeNil)
		So(matches, ShouldHaveLength, 4)
		So(matches[3].ThirdPlace, ShouldBeTrue)
		So(matches[3].Round, ShouldEqual, 2)
	})

	Convey("Given five seeds and a third-place playoff", t, func() {
		matches, err := schedule.Bracket([]string{"1", "2", "3", "4", "5"}, true, sequentialIDs())
		So(err, ShouldBeNil)

		Convey("Then both semifinals are reachable and the playoff is kept", func() {
			third := matches[len(matches)-1]
			So(third.ThirdPlace, ShouldBeTrue)
			So(third.Round, ShouldEqual, 3)
		})
	})

	Convey("Given a single seed", t, func() {
		_, err := schedule.Bracket([]string{"only"}, false, sequentialIDs())
		So(errors.Is(err, schedule.ErrNotEnoughTeams), ShouldBeTrue)
	})
}

func TestSeeds(t *testing.T) {
	Convey("Given two group tables", t, func() {
		tables := [][]standings.Row{
			{{Rank: 1, TeamID: "A1"}, {Rank: 2, TeamID: "A2"}, {Rank: 3, TeamID: "A3"}},
			{{Rank: 1, TeamID: "B1"}, {Rank: 2, TeamID: "B2"}},
		}

		Convey("When two teams qualify per group", func() {
			seeds := schedule.Seeds(tables, 2)

			Convey("Then the list is in bracket order", func() {
				So(seeds, ShouldResemble, []string{"A1", "B2", "B1", "A2"})
			})

			Convey("And sequential pairing crosses winners with runners-up", func() {
				matches, err := schedule.Bracket(seeds, false, sequentialIDs())
				So(err, ShouldBeNil)
				So(pairKey(matches[0].Team1ID, matches[0].Team2ID), ShouldEqual, "A1-B2")
				So(pairKey(matches[1].Team1ID, matches[1].Team2ID), ShouldEqual, "A2-B1")
			})
		})

		Convey("When every team qualifies", func() {
			Convey("Then an uneven field stays ranked for bye placement", func() {
				So(schedule.Seeds(tables, 0), ShouldResemble, []string{"A1", "B1", "A2", "B2", "A3"})
			})
		})
	})

	Convey("Given four group winners", t, func() {
		tables := [][]standings.Row{
			{{Rank: 1, TeamID: "A"}}, {{Rank: 1, TeamID: "B"}}, {{Rank: 1, TeamID: "C"}}, {{Rank: 1, TeamID: "D"}},
		}
		So(schedule.Seeds(tables, 1), ShouldResemble, []string{"A", "D", "B", "C"})
	})
}
