package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dash-soft/hanoi/internal/model"
)

// SolveInput is the hanoi_solve argument.
type SolveInput struct {
	Disks int `json:"disks" jsonschema:"number of disks, from 0 to 16"`
}

// SessionsInput is the hanoi_sessions argument.
type SessionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum sessions to return, default 20"`
}

// SessionsResult lists recorded sessions, newest first.
type SessionsResult struct {
	Sessions []*model.SessionRecord `json:"sessions" jsonschema:"recorded sessions, newest first"`
}

// SessionInput is the hanoi_session argument.
type SessionInput struct {
	ID string `json:"id" jsonschema:"session id"`
}

// HealthInput takes no arguments.
type HealthInput struct{}

// SolveTool defines the tool that plans a full solve.
func SolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name: "hanoi_solve",
		Description: "Plans the optimal move sequence for a tower of disks starting on the Source rod. " +
			"Returns every move in order with the disk and the rods it moves between.",
	}
}

// SessionsTool defines the tool that lists recorded sessions.
func SessionsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "hanoi_sessions",
		Description: "Lists recent solve sessions with their outcome and move totals",
	}
}

// SessionTool defines the tool that reads one session.
func SessionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "hanoi_session",
		Description: "Gets one solve session by id, including the final contents of each rod",
	}
}

// HealthTool defines the tool that checks the server.
func HealthTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "hanoi_health",
		Description: "Checks that the hanoi server is up and whether session history is available",
	}
}
