package simulate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/pong/internal/adapters/http/api"
	"github.com/okian/pong/internal/adapters/persistence"
	service "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/simulate"
	"github.com/okian/pong/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startServer() (*service.Service, *httptest.Server) {
	svc := service.New(service.WithPersister(persistence.NewMemory()), service.WithSeed(11))
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc, httptest.NewServer(api.NewServer(svc, svc).Routes())
}

func TestRunner_FullTournament(t *testing.T) {
	Convey("Given a running server", t, func() {
		svc, srv := startServer()
		defer svc.Stop()
		defer srv.Close()

		Convey("When a tournament with a third-place match is simulated", func() {
			runner, err := simulate.NewRunner(simulate.Config{
				BaseURL:     srv.URL,
				Teams:       10,
				Groups:      3,
				Qualifiers:  2,
				ThirdPlace:  true,
				Concurrency: 4,
				Seed:        42,
			})
			So(err, ShouldBeNil)
			stats, err := runner.Run(context.Background())

			Convey("Then it ends with a champion", func() {
				So(err, ShouldBeNil)
				So(stats.Champion, ShouldNotBeEmpty)
				So(stats.TournamentID, ShouldNotBeEmpty)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Replays, ShouldEqual, 1)
				So(stats.KnockoutMatches, ShouldBeGreaterThan, 0)
				So(stats.Rounds, ShouldBeGreaterThanOrEqualTo, 2)
			})

			Convey("And the server agrees", func() {
				So(err, ShouldBeNil)
				b, err := svc.Bracket(context.Background(), stats.TournamentID)
				So(err, ShouldBeNil)
				So(b.ChampionName, ShouldEqual, stats.Champion)
				So(b.ThirdPlace, ShouldNotBeNil)
				So(b.ThirdPlace.Completed, ShouldBeTrue)
			})
		})

		Convey("When every team qualifies from a single group", func() {
			runner, err := simulate.NewRunner(simulate.Config{
				BaseURL: srv.URL,
				Name:    "Everyone In",
				Teams:   5,
				Groups:  1,
				Seed:    7,
			})
			So(err, ShouldBeNil)
			stats, err := runner.Run(context.Background())

			Convey("Then byes do not stall the bracket", func() {
				So(err, ShouldBeNil)
				So(stats.GroupMatches, ShouldEqual, 10)
				So(stats.Champion, ShouldNotBeEmpty)
			})
		})
	})
}

func TestRunner_Failures(t *testing.T) {
	Convey("Given invalid options", t, func() {
		_, err := simulate.NewRunner(simulate.Config{})
		So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)

		_, err = simulate.NewRunner(simulate.Config{BaseURL: "http://x", Teams: 3, Groups: 4})
		So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)

		_, err = simulate.NewRunner(simulate.Config{BaseURL: "http://x", Teams: 1})
		So(errors.Is(err, simulate.ErrInvalidConfig), ShouldBeTrue)
	})

	Convey("Given a server that is down", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		runner, err := simulate.NewRunner(simulate.Config{BaseURL: srv.URL, Seed: 1})
		So(err, ShouldBeNil)

		Convey("Then the health check fails", func() {
			_, err := runner.Run(context.Background())
			So(errors.Is(err, simulate.ErrUnhealthy), ShouldBeTrue)
		})
	})

	Convey("Given a server whose engine is stopped", t, func() {
		svc, srv := startServer()
		defer srv.Close()
		svc.Stop()
		runner, err := simulate.NewRunner(simulate.Config{BaseURL: srv.URL, Seed: 1})
		So(err, ShouldBeNil)

		Convey("Then the create call reports the server error", func() {
			_, err := runner.Run(context.Background())
			So(err, ShouldNotBeNil)
			So(simulate.IsAPIError(err, http.StatusServiceUnavailable), ShouldBeTrue)
		})
	})
}
