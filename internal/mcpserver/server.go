// Package mcpserver exposes the hanoi HTTP API as MCP tools. Every tool
// call is forwarded to a running hanoi server.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dash-soft/hanoi/internal/model"
)

const (
	serverName    = "hanoi"
	serverVersion = "1.0.0"

	defaultSessionLimit = 20
	requestTimeout      = 30 * time.Second
)

// Server delegates MCP tool calls to the hanoi HTTP API.
type Server struct {
	baseURL   string
	client    *http.Client
	logger    *slog.Logger
	mcpServer *mcp.Server
}

// New creates a server whose tools call the API at baseURL.
func New(baseURL string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}

	s.mcpServer = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(s.mcpServer, SolveTool(), s.solve)
	mcp.AddTool(s.mcpServer, SessionsTool(), s.sessions)
	mcp.AddTool(s.mcpServer, SessionTool(), s.session)
	mcp.AddTool(s.mcpServer, HealthTool(), s.health)
	return s
}

// Run serves MCP on transport until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("mcp server starting", "server", s.baseURL)
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) solve(ctx context.Context, _ *mcp.CallToolRequest, input SolveInput) (*mcp.CallToolResult, model.SolveResponse, error) {
	var out model.SolveResponse
	err := s.getJSON(ctx, "/solve", url.Values{"disks": {strconv.Itoa(input.Disks)}}, &out)
	return nil, out, err
}

func (s *Server) sessions(ctx context.Context, _ *mcp.CallToolRequest, input SessionsInput) (*mcp.CallToolResult, SessionsResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	var out SessionsResult
	err := s.getJSON(ctx, "/sessions", url.Values{"limit": {strconv.Itoa(limit)}}, &out)
	return nil, out, err
}

func (s *Server) session(ctx context.Context, _ *mcp.CallToolRequest, input SessionInput) (*mcp.CallToolResult, model.SessionRecord, error) {
	var out model.SessionRecord
	if strings.TrimSpace(input.ID) == "" {
		return nil, out, fmt.Errorf("id is required")
	}
	err := s.getJSON(ctx, "/sessions/"+url.PathEscape(input.ID), nil, &out)
	return nil, out, err
}

func (s *Server) health(ctx context.Context, _ *mcp.CallToolRequest, _ HealthInput) (*mcp.CallToolResult, model.HealthResponse, error) {
	var out model.HealthResponse
	err := s.getJSON(ctx, "/health", nil, &out)
	return nil, out, err
}

// getJSON fetches path and decodes the body into out. Error responses
// become errors carrying the API's message.
func (s *Server) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("hanoi server unreachable", "path", path, "error", err)
		return fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr model.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("hanoi server returned HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
