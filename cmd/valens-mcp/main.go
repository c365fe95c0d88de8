package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Ranveer112/valens/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// valens-mcp serves the Valens MCP tools over stdio, reading data from a
// remote Valens server's REST API. Useful when the MCP client runs locally
// but the tracker lives elsewhere on the tailnet.
func main() {
	serverURL := flag.String("server", "", "Valens server URL (e.g. https://valens.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("valens-mcp", Version)
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: valens-mcp -server <URL>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Log to stderr; stdout carries the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ds := mcp.NewHTTPClient(*serverURL)
	srv := mcp.New(ds, Version, log)

	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
