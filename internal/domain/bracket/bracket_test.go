package bracket_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/pong/internal/domain/bracket"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

// knockoutTournament builds a tournament whose bracket is seeded from ids in order.
func knockoutTournament(thirdPlace bool, ids ...string) *model.Tournament {
	t := model.New("t1", "Cup", "2024-06-01", "")
	for _, id := range ids {
		So(t.Teams.Add(&model.Team{ID: id, Name: "Team " + id, Players: []string{"x", "y"}}), ShouldBeNil)
	}
	n := 0
	matches, err := schedule.Bracket(ids, thirdPlace, func() string {
		n++
		return fmt.Sprintf("k%d", n)
	})
	So(err, ShouldBeNil)
	for _, m := range matches {
		t.Matches = append(t.Matches, m)
	}
	t.ThirdPlaceMatch = thirdPlace
	t.Status = model.StatusKnockout
	t.CurrentPhase = model.PhaseKnockout
	return t
}

func play(t *model.Tournament, m *model.KnockoutMatch, s1, s2 int) {
	m.SetScores(s1, s2, t.MaxScore)
	So(bracket.Complete(t, m.ID), ShouldBeNil)
}

func TestComplete(t *testing.T) {
	Convey("Given a four-team bracket", t, func() {
		tour := knockoutTournament(false, "A", "B", "C", "D")
		semi0 := tour.KnockoutMatch(1, 0)
		semi1 := tour.KnockoutMatch(1, 1)
		final := tour.KnockoutMatch(2, 0)

		Convey("When position 1 finishes before position 0", func() {
			play(tour, semi1, 10, 4)
			So(final.Team1ID, ShouldEqual, "C")
			play(tour, semi0, 3, 10)

			Convey("Then the later winner takes the second slot", func() {
				So(final.Team2ID, ShouldEqual, "B")
				So(bracket.StateOf(final), ShouldEqual, bracket.Scheduled)
				So(tour.Status, ShouldEqual, model.StatusKnockout)
			})
		})

		Convey("When the whole bracket is played", func() {
			play(tour, semi0, 10, 2)
			play(tour, semi1, 10, 8)
			So(final.Team1ID, ShouldEqual, "A")
			So(final.Team2ID, ShouldEqual, "C")
			play(tour, final, 6, 10)

			Convey("Then the tournament is completed with a champion", func() {
				So(tour.Status, ShouldEqual, model.StatusCompleted)
				So(final.WinnerID, ShouldEqual, "C")
				champion, ok := bracket.Champion(tour)
				So(ok, ShouldBeTrue)
				So(champion, ShouldEqual, "C")
				So(bracket.Finished(tour), ShouldBeTrue)
			})
		})

		Convey("When a knockout match is tied", func() {
			semi0.SetScores(5, 5, tour.MaxScore)
			err := bracket.Complete(tour, semi0.ID)

			Convey("Then it is rejected and nothing propagates", func() {
				So(errors.Is(err, bracket.ErrTie), ShouldBeTrue)
				So(semi0.Completed, ShouldBeFalse)
				So(semi0.WinnerID, ShouldBeEmpty)
				So(final.Team1ID, ShouldBeEmpty)
			})
		})

		Convey("When scores are missing", func() {
			err := bracket.Complete(tour, semi0.ID)
			So(errors.Is(err, bracket.ErrIncompleteScore), ShouldBeTrue)
		})

		Convey("When the final has no teams yet", func() {
			err := bracket.Complete(tour, final.ID)
			So(errors.Is(err, bracket.ErrUnscheduled), ShouldBeTrue)
			So(bracket.StateOf(final), ShouldEqual, bracket.Unscheduled)
		})

		Convey("When a match is completed twice", func() {
			play(tour, semi0, 10, 0)
			err := bracket.Complete(tour, semi0.ID)
			So(errors.Is(err, bracket.ErrAlreadyCompleted), ShouldBeTrue)
			So(bracket.StateOf(semi0), ShouldEqual, bracket.Completed)
		})

		Convey("When the match id is unknown", func() {
			err := bracket.Complete(tour, "missing")
			So(errors.Is(err, bracket.ErrNotKnockout), ShouldBeTrue)
		})
	})

	Convey("Given a four-team bracket with a third-place playoff", t, func() {
		tour := knockoutTournament(true, "A", "B", "C", "D")
		third := tour.ThirdPlace()
		So(third, ShouldNotBeNil)

		play(tour, tour.KnockoutMatch(1, 0), 10, 1)
		play(tour, tour.KnockoutMatch(1, 1), 2, 10)

		Convey("Then semifinal losers meet for third place", func() {
			So(third.Team1ID, ShouldEqual, "B")
			So(third.Team2ID, ShouldEqual, "C")
		})

		Convey("And the final alone does not complete the tournament", func() {
			play(tour, tour.KnockoutMatch(2, 0), 10, 9)
			So(tour.Status, ShouldEqual, model.StatusKnockout)

			play(tour, third, 10, 7)
			So(tour.Status, ShouldEqual, model.StatusCompleted)
		})
	})

	Convey("Given eight teams", t, func() {
		ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
		tour := knockoutTournament(false, ids...)

		Convey("Completing a round fully populates the next one", func() {
			for p := 0; p < 4; p++ {
				play(tour, tour.KnockoutMatch(1, p), 10, 0)
			}
			for p := 0; p < 2; p++ {
				So(tour.KnockoutMatch(2, p).HasTeams(), ShouldBeTrue)
			}
			So(tour.KnockoutMatch(3, 0).Team1ID, ShouldBeEmpty)

			for p := 0; p < 2; p++ {
				play(tour, tour.KnockoutMatch(2, p), 10, 0)
			}
			So(tour.KnockoutMatch(3, 0).HasTeams(), ShouldBeTrue)
		})
	})

	Convey("Given five teams with byes", t, func() {
		tour := knockoutTournament(false, "1", "2", "3", "4", "5")
		play(tour, tour.KnockoutMatch(1, 1), 4, 10)

		Convey("Then the play-in winner joins the waiting top seed", func() {
			m := tour.KnockoutMatch(2, 0)
			So(m.Team1ID, ShouldEqual, "1")
			So(m.Team2ID, ShouldEqual, "5")
		})
	})

	Convey("Given three teams with a third-place playoff requested", t, func() {
		tour := knockoutTournament(true, "1", "2", "3")
		So(tour.ThirdPlace(), ShouldBeNil)

		Convey("Then the play-in and the final complete the tournament", func() {
			play(tour, tour.KnockoutMatch(1, 1), 10, 7)
			final := tour.KnockoutMatch(2, 0)
			So(final.Team1ID, ShouldEqual, "1")
			So(final.Team2ID, ShouldEqual, "2")
			play(tour, final, 10, 4)
			So(tour.Status, ShouldEqual, model.StatusCompleted)
			So(bracket.Finished(tour), ShouldBeTrue)
		})
	})

	Convey("Given two teams", t, func() {
		tour := knockoutTournament(false, "A", "B")
		play(tour, tour.KnockoutMatch(1, 0), 10, 3)
		So(tour.Status, ShouldEqual, model.StatusCompleted)
	})
}

func TestRoundName(t *testing.T) {
	Convey("Rounds are named from the final backwards", t, func() {
		So(bracket.RoundName(4, 4), ShouldEqual, "Final")
		So(bracket.RoundName(3, 4), ShouldEqual, "Semi-finals")
		So(bracket.RoundName(2, 4), ShouldEqual, "Quarter-finals")
		So(bracket.RoundName(1, 4), ShouldEqual, "Octofinals")
		So(bracket.RoundName(1, 5), ShouldEqual, "Round 1")
		So(bracket.MatchName(&model.KnockoutMatch{Round: 2, ThirdPlace: true}, 2), ShouldEqual, "Third place")
	})
}

func TestReadiness(t *testing.T) {
	Convey("Given a grouped tournament", t, func() {
		tour := model.New("t2", "League", "", "")
		m1 := &model.GroupMatch{MatchBase: model.MatchBase{ID: "g1", Team1ID: "A", Team2ID: "B"}}
		m2 := &model.GroupMatch{MatchBase: model.MatchBase{ID: "g2", Team1ID: "C", Team2ID: "D"}}

		Convey("Without any group match it is not ready", func() {
			So(errors.Is(bracket.Readiness(tour), bracket.ErrNoGroupMatches), ShouldBeTrue)
			So(bracket.CanStartKnockout(tour), ShouldBeFalse)
		})

		Convey("With an open group match it is not ready", func() {
			m1.Completed = true
			tour.Matches = []model.Match{m1, m2}
			So(errors.Is(bracket.Readiness(tour), bracket.ErrGroupIncomplete), ShouldBeTrue)
		})

		Convey("With every group match completed it is ready", func() {
			m1.Completed, m2.Completed = true, true
			tour.Matches = []model.Match{m1, m2}
			So(bracket.CanStartKnockout(tour), ShouldBeTrue)

			Convey("But not once the knockout has started", func() {
				tour.CurrentPhase = model.PhaseKnockout
				tour.Status = model.StatusKnockout
				So(errors.Is(bracket.Readiness(tour), bracket.ErrWrongPhase), ShouldBeTrue)
			})
		})
	})
}
