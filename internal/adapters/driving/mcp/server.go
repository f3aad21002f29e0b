package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voltfolio/evisync/internal/core/ports/driving"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes the evidence engine's operations as MCP tools. The whole
// surface is backed by one driving port, so the server takes it directly.
type Server struct {
	evidence driving.EvidenceService
	server   *mcp.Server
}

// NewServer creates an MCP server over the given evidence service.
func NewServer(evidence driving.EvidenceService) (*Server, error) {
	if evidence == nil {
		return nil, ErrMissingEvidenceService
	}

	s := &Server{
		evidence: evidence,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "evisync",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves MCP over streamable HTTP on addr until the context is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
