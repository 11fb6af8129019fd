// Package mcp exposes the song library and its similarity scores as MCP
// tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfenderov/songsim/internal/progress"
	"github.com/mfenderov/songsim/internal/similarity"
	"github.com/mfenderov/songsim/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Song is the JSON shape of a song in tool results.
type Song struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Source string   `json:"source"`
	Lines  int      `json:"lines"`
	Lyrics []string `json:"lyrics,omitempty"`
}

// Similarity is the result of get_similarity.
type Similarity struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Computed bool    `json:"computed"`
	Score    float64 `json:"score"`
	Message  string  `json:"message,omitempty"`
}

// Status is the result of similarity_status.
type Status struct {
	Running     bool `json:"running"`
	Documents   int  `json:"documents"`
	ScoredPairs int  `json:"scored_pairs"`
	TotalPairs  int  `json:"total_pairs"`
	Done        int  `json:"progress_done"`
	Total       int  `json:"progress_total"`
}

// Server wraps the MCP server around a similarity engine.
type Server struct {
	mcpServer *server.MCPServer
	engine    *similarity.Engine
	counter   *progress.Counter // optional
}

// NewServer creates a new MCP server with song tools. counter may be nil;
// when set, similarity_status reports the progress it has recorded.
func NewServer(config Config, engine *similarity.Engine, counter *progress.Counter) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    engine,
		counter:   counter,
	}

	listTool := mcp.NewTool("list_songs",
		mcp.WithDescription("List the songs in the library with their IDs and titles."),
		mcp.WithString("query",
			mcp.Description("Only list songs whose title or source contains this text (case-insensitive)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of songs to return (default: 100)"),
		),
	)
	mcpServer.AddTool(listTool, s.listSongsHandler)

	getSongTool := mcp.NewTool("get_song",
		mcp.WithDescription("Get a song by ID, including its lyrics"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Song ID to retrieve"),
		),
	)
	mcpServer.AddTool(getSongTool, s.getSongHandler)

	similarityTool := mcp.NewTool("get_similarity",
		mcp.WithDescription("Get the distance score of two songs. 0 means identical lyrics, values near 1 mean nothing in common."),
		mcp.WithString("a",
			mcp.Required(),
			mcp.Description("ID of the first song"),
		),
		mcp.WithString("b",
			mcp.Required(),
			mcp.Description("ID of the second song"),
		),
	)
	mcpServer.AddTool(similarityTool, s.getSimilarityHandler)

	statusTool := mcp.NewTool("similarity_status",
		mcp.WithDescription("Report whether similarities are still being computed and how far along they are."),
	)
	mcpServer.AddTool(statusTool, s.statusHandler)

	return s, nil
}

func (s *Server) listSongsHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	songs := s.handleListSongs(req.GetString("query", ""), req.GetInt("limit", 100))
	return jsonResult(songs)
}

func (s *Server) getSongHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	song := s.handleGetSong(id)
	if song == nil {
		return mcp.NewToolResultError(fmt.Sprintf("song not found: %s", id)), nil
	}
	return jsonResult(song)
}

func (s *Server) getSimilarityHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := req.RequireString("a")
	if err != nil {
		return mcp.NewToolResultError("a parameter is required"), nil
	}
	b, err := req.RequireString("b")
	if err != nil {
		return mcp.NewToolResultError("b parameter is required"), nil
	}

	result, err := s.handleGetSimilarity(a, b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) statusHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.handleStatus())
}

func (s *Server) handleListSongs(query string, limit int) []Song {
	query = strings.ToLower(query)
	songs := []Song{}
	for _, doc := range s.engine.Documents() {
		if limit > 0 && len(songs) >= limit {
			break
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(doc.Name()), query) &&
			!strings.Contains(strings.ToLower(doc.SourceID()), query) {
			continue
		}
		songs = append(songs, toSong(doc, false))
	}
	return songs
}

func (s *Server) handleGetSong(id string) *Song {
	doc, ok := s.engine.Document(id)
	if !ok {
		return nil
	}
	song := toSong(doc, true)
	return &song
}

func (s *Server) handleGetSimilarity(a, b string) (*Similarity, error) {
	for _, id := range []string{a, b} {
		if _, ok := s.engine.Document(id); !ok {
			return nil, fmt.Errorf("song not found: %s", id)
		}
	}
	if a == b {
		return &Similarity{A: a, B: b, Computed: true, Score: 0, Message: "same song"}, nil
	}

	score, ok := s.engine.Score(a, b)
	if !ok {
		return &Similarity{A: a, B: b, Message: "not computed yet"}, nil
	}
	return &Similarity{A: a, B: b, Computed: true, Score: score}, nil
}

func (s *Server) handleStatus() Status {
	n := len(s.engine.Documents())
	status := Status{
		Running:     s.engine.Running(),
		Documents:   n,
		ScoredPairs: s.engine.ScoredPairs(),
		TotalPairs:  n * (n - 1) / 2,
	}
	if s.counter != nil {
		snap := s.counter.Snapshot()
		status.Done, status.Total = snap.Done, snap.Total
	}
	return status
}

func toSong(doc *models.Document, withLyrics bool) Song {
	song := Song{
		ID:     doc.ID(),
		Title:  doc.Name(),
		Source: doc.SourceID(),
		Lines:  doc.Len(),
	}
	if withLyrics {
		song.Lyrics = make([]string, 0, doc.Len())
		for _, line := range doc.Lines() {
			song.Lyrics = append(song.Lyrics, line.Text())
		}
	}
	return song
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
