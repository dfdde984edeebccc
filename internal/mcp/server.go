// Package mcp exposes the COROS Training Hub API as MCP tools.
package mcp

import (
	"log/slog"

	"github.com/claude/coroshub/internal/auth"
	"github.com/claude/coroshub/internal/coros"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools registered.
func New(session *auth.Session, client *coros.Client, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("coroshub", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("COROS Training Hub server. Authenticate, manage structured run/bike workouts, and schedule them on the training calendar. Dates use YYYYMMDD format."),
	)

	h := &handlers{session: session, client: client, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolLogin, Handler: h.login},
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolCreateWorkout, Handler: h.createWorkout},
		server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		server.ServerTool{Tool: toolGetCalendar, Handler: h.getCalendar},
		server.ServerTool{Tool: toolScheduleWorkout, Handler: h.scheduleWorkout},
		server.ServerTool{Tool: toolUnscheduleWorkout, Handler: h.unscheduleWorkout},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	session *auth.Session
	client  *coros.Client
	log     *slog.Logger
}
