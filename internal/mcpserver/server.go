// Package mcpserver exposes one event wizard session as MCP tools over
// streamable HTTP, so an agent can fill in and submit the form.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/mcp-go/server"
)

// Server serves the tools of one wizard session.
type Server struct {
	wiz       *event.Wizard
	submitter *submit.Submitter

	// mu serializes tool calls against the wizard.
	mu sync.Mutex

	lifecycle sync.Mutex
	mcpServer *server.MCPServer
	stdServer *http.Server
	addr      string
}

// New creates a server for wiz. Submissions go through submitter.
func New(wiz *event.Wizard, submitter *submit.Submitter) *Server {
	return &Server{wiz: wiz, submitter: submitter}
}

// Start listens on addr ("127.0.0.1:0" picks a free port) and serves in the
// background. It returns the bound address.
func (s *Server) Start(ctx context.Context, addr string) (string, error) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.stdServer != nil {
		return "", errors.New("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	s.mcpServer = server.NewMCPServer(
		"eventwiz",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.addr = listener.Addr().String()

	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true)))
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", s.addr)
	return s.addr, nil
}

// Stop shuts the HTTP server down. Stopping a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop mcp server: %w", err)
	}
	s.stdServer = nil
	s.mcpServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the MCP endpoint URL.
func (s *Server) URL() string {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return fmt.Sprintf("http://%s/mcp", s.addr)
}
