package api

import (
	"errors"
	"strings"

	service "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/domain/model"
)

// tournamentRequest is the body of POST /tournaments.
type tournamentRequest struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Date               string        `json:"date"`
	Description        string        `json:"description"`
	NumberOfGroups     int           `json:"numberOfGroups"`
	KnockoutQualifiers *int          `json:"knockoutQualifiers"`
	ThirdPlaceMatch    bool          `json:"thirdPlaceMatch"`
	MaxScore           int           `json:"maxScore"`
	Teams              []teamRequest `json:"teams"`
}

func (req *tournamentRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return errors.New("missing name")
	case req.NumberOfGroups < 0:
		return errors.New("numberOfGroups must not be negative")
	case req.KnockoutQualifiers != nil && *req.KnockoutQualifiers < 0:
		return errors.New("knockoutQualifiers must not be negative")
	case req.MaxScore < 0:
		return errors.New("maxScore must not be negative")
	}
	return nil
}

// tournament builds the new tournament; zero settings are filled with
// defaults by the store.
func (req *tournamentRequest) tournament() (*model.Tournament, error) {
	t := model.New(strings.TrimSpace(req.ID), strings.TrimSpace(req.Name), req.Date, req.Description)
	t.NumberOfGroups = req.NumberOfGroups
	if req.KnockoutQualifiers != nil {
		t.KnockoutQualifiers = *req.KnockoutQualifiers
	}
	t.ThirdPlaceMatch = req.ThirdPlaceMatch
	t.MaxScore = req.MaxScore
	for _, tr := range req.Teams {
		in := tr.input("")
		if in.ID == "" {
			in.ID = model.NewID()
		}
		if err := t.Teams.Add(&model.Team{ID: in.ID, Name: in.Name, Players: in.Players}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// teamRequest is the body of the team endpoints.
type teamRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

func (req *teamRequest) input(id string) service.TeamInput {
	if id == "" {
		id = req.ID
	}
	in := service.TeamInput{ID: strings.TrimSpace(id), Name: strings.TrimSpace(req.Name)}
	if req.Players != nil {
		in.Players = make([]string, len(req.Players))
		for i, p := range req.Players {
			in.Players[i] = strings.TrimSpace(p)
		}
	}
	return in
}

// groupsRequest is the body of PUT /tournaments/{id}/groups.
type groupsRequest struct {
	NumberOfGroups int `json:"numberOfGroups"`
}

func (req *groupsRequest) validate() error {
	if req.NumberOfGroups < 1 {
		return errors.New("numberOfGroups must be at least 1")
	}
	return nil
}

// scoreRequest is the body of PUT /tournaments/{id}/matches/{matchID}/score.
type scoreRequest struct {
	Team1Score *int `json:"team1Score"`
	Team2Score *int `json:"team2Score"`
	Complete   bool `json:"complete"`
}

func (req *scoreRequest) validate() error {
	if req.Team1Score == nil || req.Team2Score == nil {
		return errors.New("team1Score and team2Score are required")
	}
	return nil
}
