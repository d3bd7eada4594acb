package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/pong/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodecRoundTrip(t *testing.T) {
	Convey("Given a tournament in the knockout phase", t, func() {
		tr := model.New("t1", "Spring Cup", "2026-04-01", "garage")
		tr.Status = model.StatusKnockout
		tr.CurrentPhase = model.PhaseKnockout
		tr.KnockoutQualifiers = 0
		tr.ThirdPlaceMatch = true
		for _, id := range []string{"d", "a", "c", "b"} {
			So(tr.Teams.Add(newTeam(id)), ShouldBeNil)
		}
		team, _ := tr.Teams.Get("a")
		team.Tally = model.Tally{Points: 4, Wins: 1, Draws: 1}
		tr.Groups = [][]string{{"d", "a"}, {"c", "b"}}
		tr.Matches = []model.Match{
			&model.GroupMatch{MatchBase: model.MatchBase{ID: "g1", Team1ID: "d", Team2ID: "a", Score1: intp(1), Score2: intp(1), Completed: true}, Group: 0},
			&model.KnockoutMatch{MatchBase: model.MatchBase{ID: "k1", Team1ID: "a", Team2ID: "b", Score1: intp(5), Score2: intp(2), Completed: true}, Round: 1, Position: 0, WinnerID: "a"},
			&model.KnockoutMatch{MatchBase: model.MatchBase{ID: "k2", Team1ID: "a"}, Round: 2, Position: 0},
		}

		Convey("When encoding and decoding", func() {
			data, err := model.Encode([]*model.Tournament{tr})
			So(err, ShouldBeNil)
			out, err := model.Decode(data)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 1)
			got := out[0]

			Convey("Then the team map is rebuilt in insertion order", func() {
				So(got.Teams.IDs(), ShouldResemble, []string{"d", "a", "c", "b"})
				a, ok := got.Teams.Get("a")
				So(ok, ShouldBeTrue)
				So(a.Tally, ShouldResemble, model.Tally{Points: 4, Wins: 1, Draws: 1})
			})

			Convey("And configuration and phase survive", func() {
				So(got.Status, ShouldEqual, model.StatusKnockout)
				So(got.CurrentPhase, ShouldEqual, model.PhaseKnockout)
				So(got.KnockoutQualifiers, ShouldEqual, 0)
				So(got.ThirdPlaceMatch, ShouldBeTrue)
				So(got.Groups, ShouldResemble, tr.Groups)
			})

			Convey("And matches keep their variant", func() {
				So(got.Matches, ShouldHaveLength, 3)
				_, isGroup := got.Matches[0].(*model.GroupMatch)
				So(isGroup, ShouldBeTrue)
				k1, isKnockout := got.Matches[1].(*model.KnockoutMatch)
				So(isKnockout, ShouldBeTrue)
				So(k1.WinnerID, ShouldEqual, "a")
				So(got.KnockoutMatch(2, 0).Team1ID, ShouldEqual, "a")
				So(got.KnockoutMatch(2, 0).HasScores(), ShouldBeFalse)
			})
		})
	})
}

func TestCodecLenientLoad(t *testing.T) {
	Convey("Given a legacy record with embedded team objects and gaps", t, func() {
		data := []byte(`[{
			"id": "t1", "name": "Old", "date": "2024-01-01",
			"teams": [
				{"id": "a", "name": "A", "players": ["x", "y"], "groupPoints": 7},
				{"id": "b", "name": "B", "players": ["z", "w"]},
				{"id": "", "name": "broken"}
			],
			"matches": [
				{"id": "m1", "team1": {"id": "a"}, "team2": {"id": "b"}, "team1Score": 10, "team2Score": 3, "completed": true, "groupIndex": 0},
				{"id": "m2", "team1": {"id": "a"}, "team2": {"id": "ghost"}, "team1Score": 0, "team2Score": 0, "completed": false},
				{"id": "m3", "team1Id": "a", "team2Id": "b", "completed": true}
			],
			"groups": [["a", "b", "ghost"]]
		}, {"id": "t2"}]`)

		out, err := model.Decode(data)

		Convey("Then it loads with safe defaults", func() {
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			t1 := out[0]
			So(t1.Status, ShouldEqual, model.StatusGroup)
			So(t1.CurrentPhase, ShouldEqual, model.PhaseGroup)
			So(t1.NumberOfGroups, ShouldEqual, model.DefaultNumberOfGroups)
			So(t1.KnockoutQualifiers, ShouldEqual, model.DefaultKnockoutQualifiers)
			So(t1.MaxScore, ShouldEqual, model.DefaultMaxScore)
			So(t1.Teams.IDs(), ShouldResemble, []string{"a", "b"})
			So(t1.Groups, ShouldResemble, [][]string{{"a", "b"}})

			So(t1.Matches, ShouldHaveLength, 2)
			So(t1.Matches[0].Base().Team1ID, ShouldEqual, "a")
			So(t1.Matches[0].Base().Completed, ShouldBeTrue)
			So(t1.Matches[1].Base().Completed, ShouldBeFalse)

			t2 := out[1]
			So(t2.Teams.Len(), ShouldEqual, 0)
			So(t2.Matches, ShouldBeEmpty)
		})
	})

	Convey("Given a payload with one broken record", t, func() {
		out, err := model.Decode([]byte(`[{"id": "ok", "name": "fine"}, {"id": 5}, {"id": "ok"}]`))

		Convey("Then the good record survives and the rest are reported", func() {
			So(out, ShouldHaveLength, 1)
			So(out[0].ID, ShouldEqual, "ok")
			So(errors.Is(err, model.ErrCorruptRecord), ShouldBeTrue)
		})
	})

	Convey("Given a record that repeats a team id", t, func() {
		data := []byte(`[{"id": "t1", "name": "Twice", "teams": [
			{"id": "a", "name": "First", "players": ["x", "y"]},
			{"id": "a", "name": "Second", "players": ["z", "w"]}
		]}]`)
		out, err := model.Decode(data)

		Convey("Then the first team is kept and the drop is reported", func() {
			So(out, ShouldHaveLength, 1)
			So(out[0].Teams.IDs(), ShouldResemble, []string{"a"})
			a, _ := out[0].Teams.Get("a")
			So(a.Name, ShouldEqual, "First")
			So(errors.Is(err, model.ErrCorruptRecord), ShouldBeTrue)
			So(errors.Is(err, model.ErrDuplicateTeam), ShouldBeTrue)
		})

		Convey("And decoding it directly fails", func() {
			var tour model.Tournament
			err := json.Unmarshal(data[1:len(data)-1], &tour)
			So(errors.Is(err, model.ErrDuplicateTeam), ShouldBeTrue)
		})
	})

	Convey("Given garbage", t, func() {
		out, err := model.Decode([]byte(`{not json`))
		So(out, ShouldBeEmpty)
		So(errors.Is(err, model.ErrCorruptRecord), ShouldBeTrue)
	})

	Convey("Given an empty payload", t, func() {
		out, err := model.Decode(nil)
		So(out, ShouldBeEmpty)
		So(err, ShouldBeNil)
	})
}
