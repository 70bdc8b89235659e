// Package main provides the standalone MCP entry point of the oncodrug server.
// It requires no external services: annotations are read from a local SQLite file.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oncodrug-server/internal/config"
	"github.com/oncodrug-server/internal/mcp"
)

func main() {
	cfg := config.LoadLiteConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := mcp.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		log.Printf("MCP server stopped: %v", err)
	}
}
