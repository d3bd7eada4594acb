package model_test

import (
	"errors"
	"testing"

	"github.com/okian/pong/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newTeam(id string) *model.Team {
	return &model.Team{ID: id, Name: "Team " + id, Players: []string{id + "1", id + "2"}}
}

func intp(v int) *int { return &v }

func TestTeamSet(t *testing.T) {
	Convey("Given an empty team set", t, func() {
		var s model.TeamSet

		Convey("When adding teams", func() {
			So(s.Add(newTeam("c")), ShouldBeNil)
			So(s.Add(newTeam("a")), ShouldBeNil)
			So(s.Add(newTeam("b")), ShouldBeNil)

			Convey("Then insertion order is preserved", func() {
				So(s.IDs(), ShouldResemble, []string{"c", "a", "b"})
				So(s.Len(), ShouldEqual, 3)
			})

			Convey("And duplicate ids are rejected", func() {
				err := s.Add(newTeam("a"))
				So(errors.Is(err, model.ErrDuplicateTeam), ShouldBeTrue)
				So(s.Len(), ShouldEqual, 3)
			})

			Convey("And removal keeps the remaining order", func() {
				So(s.Remove("a"), ShouldBeTrue)
				So(s.Remove("zzz"), ShouldBeFalse)
				So(s.IDs(), ShouldResemble, []string{"c", "b"})
			})

			Convey("And clones are independent", func() {
				c := s.Clone()
				team, _ := c.Get("a")
				team.Name = "renamed"
				team.Players[0] = "changed"
				orig, _ := s.Get("a")
				So(orig.Name, ShouldEqual, "Team a")
				So(orig.Players[0], ShouldEqual, "a1")
			})
		})
	})
}

func TestTeamValidate(t *testing.T) {
	Convey("Given teams of different shapes", t, func() {
		So(newTeam("a").Validate(), ShouldBeNil)

		solo := &model.Team{ID: "x", Name: "Solo", Players: []string{"p"}}
		So(errors.Is(solo.Validate(), model.ErrInvalidTeam), ShouldBeTrue)

		crowd := &model.Team{ID: "x", Name: "Crowd", Players: []string{"a", "b", "c", "d", "e"}}
		So(errors.Is(crowd.Validate(), model.ErrInvalidTeam), ShouldBeTrue)

		blank := &model.Team{ID: "x", Name: "  ", Players: []string{"a", "b"}}
		So(errors.Is(blank.Validate(), model.ErrInvalidTeam), ShouldBeTrue)

		unnamedPlayer := &model.Team{ID: "x", Name: "X", Players: []string{"a", " "}}
		So(errors.Is(unnamedPlayer.Validate(), model.ErrInvalidTeam), ShouldBeTrue)
	})
}

func TestMatchScores(t *testing.T) {
	Convey("Given a match base", t, func() {
		b := model.MatchBase{ID: "m", Team1ID: "a", Team2ID: "b"}

		Convey("Scores are clamped into range", func() {
			b.SetScores(-3, 14, 10)
			s1, s2 := b.Scores()
			So(s1, ShouldEqual, 0)
			So(s2, ShouldEqual, 10)
		})

		Convey("Decide needs a strict winner", func() {
			_, _, ok := b.Decide()
			So(ok, ShouldBeFalse)

			b.SetScores(4, 4, 10)
			_, _, ok = b.Decide()
			So(ok, ShouldBeFalse)

			b.SetScores(4, 6, 10)
			winner, loser, ok := b.Decide()
			So(ok, ShouldBeTrue)
			So(winner, ShouldEqual, "b")
			So(loser, ShouldEqual, "a")
		})
	})

	Convey("Given a knockout match with free slots", t, func() {
		km := &model.KnockoutMatch{MatchBase: model.MatchBase{ID: "k"}, Round: 2}

		So(km.Place("x"), ShouldBeTrue)
		So(km.Team1ID, ShouldEqual, "x")
		So(km.Place("y"), ShouldBeTrue)
		So(km.Team2ID, ShouldEqual, "y")
		So(km.Place("z"), ShouldBeFalse)
	})
}

func TestTournamentCloneAndValidate(t *testing.T) {
	Convey("Given a tournament with teams, a group and matches", t, func() {
		tr := model.New("t1", "Cup", "2026-06-01", "")
		So(tr.Teams.Add(newTeam("a")), ShouldBeNil)
		So(tr.Teams.Add(newTeam("b")), ShouldBeNil)
		tr.Groups = [][]string{{"a", "b"}}
		tr.Matches = []model.Match{
			&model.GroupMatch{MatchBase: model.MatchBase{ID: "g1", Team1ID: "a", Team2ID: "b", Score1: intp(3), Score2: intp(1), Completed: true}},
		}

		So(tr.Validate(), ShouldBeNil)
		So(tr.TeamsPerGroup(), ShouldEqual, 2)

		Convey("When the clone is mutated the original stays untouched", func() {
			c := tr.Clone()
			*c.Matches[0].Base().Score1 = 9
			c.Groups[0][0] = "zzz"
			So(*tr.Matches[0].Base().Score1, ShouldEqual, 3)
			So(tr.Groups[0][0], ShouldEqual, "a")
		})

		Convey("When a team sits in two groups validation fails", func() {
			tr.Groups = [][]string{{"a", "b"}, {"a"}}
			So(errors.Is(tr.Validate(), model.ErrInvalidTournament), ShouldBeTrue)
		})

		Convey("When a completed knockout match has no strict winner validation fails", func() {
			tr.Matches = append(tr.Matches, &model.KnockoutMatch{
				MatchBase: model.MatchBase{ID: "k1", Team1ID: "a", Team2ID: "b", Score1: intp(2), Score2: intp(2), Completed: true},
				Round:     1,
			})
			So(errors.Is(tr.Validate(), model.ErrInvalidMatch), ShouldBeTrue)
		})

		Convey("When a match references an unknown team validation fails", func() {
			tr.Matches = append(tr.Matches, &model.GroupMatch{MatchBase: model.MatchBase{ID: "g2", Team1ID: "a", Team2ID: "ghost"}})
			So(errors.Is(tr.Validate(), model.ErrInvalidMatch), ShouldBeTrue)
		})
	})
}
