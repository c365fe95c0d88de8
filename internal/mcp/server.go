package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Valens", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Valens training data server. Query exercises, routines, training sessions with recorded sets, previous set history per exercise, and the state of the currently guided session. All data belongs to the single local user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetExercises, Handler: h.getExercises},
		server.ServerTool{Tool: toolGetRoutines, Handler: h.getRoutines},
		server.ServerTool{Tool: toolGetTrainingSessions, Handler: h.getTrainingSessions},
		server.ServerTool{Tool: toolGetTrainingSession, Handler: h.getTrainingSession},
		server.ServerTool{Tool: toolGetPreviousSets, Handler: h.getPreviousSets},
		server.ServerTool{Tool: toolGetOngoingSession, Handler: h.getOngoingSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"valens://recent_sessions",
	"Recent Training Sessions",
	mcp.WithResourceDescription("Training sessions from the last 14 days with recorded sets and rests"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"valens://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("All exercises known to the tracker"),
	mcp.WithMIMEType("application/json"),
)
