// Package mcp exposes the resolution engine over the Model Context
// Protocol so editor agents can query symbols and dependencies of a
// loaded translation unit.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/transmute-lang/transmute/internal/ir"
)

// Engine is the loaded program state the tools answer from.
type Engine struct {
	Graph    *ir.Graph
	Includes []*ir.Graph
}

// Server manages the MCP server lifecycle.
type Server struct {
	engine *Engine
	mcp    *server.MCPServer
}

// NewServer creates an MCP server over the given engine state.
func NewServer(engine *Engine) (*Server, error) {
	if engine == nil || engine.Graph == nil {
		return nil, fmt.Errorf("engine with a loaded graph is required")
	}

	mcpServer := server.NewMCPServer(
		"transmute-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	AddResolveTool(mcpServer, engine)
	AddDepsTool(mcpServer, engine)

	return &Server{engine: engine, mcp: mcpServer}, nil
}

// Serve starts the server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
