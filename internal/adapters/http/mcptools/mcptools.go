// Package mcptools exposes read-only tournament views as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

// ErrMissingTournament is returned when a tool call names no tournament.
var ErrMissingTournament = errors.New("tournament_id is required")

// Reader is the slice of the service the tools read from.
type Reader interface {
	List(ctx context.Context) ([]*model.Tournament, error)
	Standings(ctx context.Context, id string) (*service.StandingsView, error)
	Bracket(ctx context.Context, id string) (*service.BracketView, error)
	Readiness(ctx context.Context, id string) (*service.ReadinessView, error)
}

// ListArgs is the input of list_tournaments.
type ListArgs struct{}

// TournamentArgs is the input of the per-tournament tools.
type TournamentArgs struct {
	TournamentID string `json:"tournament_id" jsonschema:"Tournament id (required)"`
}

// Summary is one line of list_tournaments.
type Summary struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Date             string       `json:"date,omitempty"`
	Status           model.Status `json:"status"`
	Teams            int          `json:"teams"`
	Groups           int          `json:"groups"`
	Matches          int          `json:"matches"`
	CompletedMatches int          `json:"completed_matches"`
}

type tools struct {
	reader  Reader
	logger  logger.Logger
	version string
}

// NewServer builds an MCP server with every tournament tool registered.
func NewServer(r Reader, opts ...Option) *mcp.Server {
	t := &tools{reader: r, version: "1.0.0"}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.NamedOrDiscard("mcp")
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "pong", Version: t.version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tournaments",
		Description: "List every tournament with its phase and progress",
	}, t.list)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tournament_standings",
		Description: "Ordered group tables of a tournament",
	}, t.standings)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "tournament_bracket",
		Description: "Knockout bracket of a tournament by round, with the champion once decided",
	}, t.bracket)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "knockout_readiness",
		Description: "Whether the knockout phase of a tournament can start, and why not",
	}, t.readiness)
	return server
}

// Handler serves the tools over streamable HTTP.
func Handler(r Reader, opts ...Option) http.Handler {
	server := NewServer(r, opts...)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (t *tools) list(ctx context.Context, _ *mcp.CallToolRequest, _ ListArgs) (*mcp.CallToolResult, any, error) {
	list, err := t.reader.List(ctx)
	if err != nil {
		return t.fail(ctx, "list_tournaments", err), nil, nil
	}
	out := make([]Summary, 0, len(list))
	for _, tr := range list {
		s := Summary{
			ID:      tr.ID,
			Name:    tr.Name,
			Date:    tr.Date,
			Status:  tr.Status,
			Teams:   tr.Teams.Len(),
			Groups:  len(tr.Groups),
			Matches: len(tr.Matches),
		}
		for _, m := range tr.Matches {
			if m.Base().Completed {
				s.CompletedMatches++
			}
		}
		out = append(out, s)
	}
	return t.result(ctx, "list_tournaments", out)
}

func (t *tools) standings(ctx context.Context, _ *mcp.CallToolRequest, args TournamentArgs) (*mcp.CallToolResult, any, error) {
	return t.view(ctx, "tournament_standings", args, func(id string) (any, error) {
		return t.reader.Standings(ctx, id)
	})
}

func (t *tools) bracket(ctx context.Context, _ *mcp.CallToolRequest, args TournamentArgs) (*mcp.CallToolResult, any, error) {
	return t.view(ctx, "tournament_bracket", args, func(id string) (any, error) {
		return t.reader.Bracket(ctx, id)
	})
}

func (t *tools) readiness(ctx context.Context, _ *mcp.CallToolRequest, args TournamentArgs) (*mcp.CallToolResult, any, error) {
	return t.view(ctx, "knockout_readiness", args, func(id string) (any, error) {
		return t.reader.Readiness(ctx, id)
	})
}

func (t *tools) view(ctx context.Context, name string, args TournamentArgs, fetch func(id string) (any, error)) (*mcp.CallToolResult, any, error) {
	id := strings.TrimSpace(args.TournamentID)
	if id == "" {
		return t.fail(ctx, name, ErrMissingTournament), nil, nil
	}
	v, err := fetch(id)
	if err != nil {
		return t.fail(ctx, name, err), nil, nil
	}
	return t.result(ctx, name, v)
}

func (t *tools) result(ctx context.Context, name string, v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return t.fail(ctx, name, err), nil, nil
	}
	metrics.RecordToolCall(name, "ok")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func (t *tools) fail(ctx context.Context, name string, err error) *mcp.CallToolResult {
	metrics.RecordToolCall(name, "error")
	t.logger.Debug(ctx, "tool call failed", logger.String("tool", name), logger.Error(err))
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
