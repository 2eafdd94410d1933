// Package mcpserver exposes the operation registry over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Transports understood by Serve.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Caller is what the MCP binding needs from the operation registry.
type Caller interface {
	List() []protocol.OperationDescriptor
	Call(ctx context.Context, name string, args map[string]any) protocol.CallResult
}

// Config holds MCP server settings.
type Config struct {
	Name      string
	Version   string
	Transport string
	Addr      string // listen address for sse and http
	BaseURL   string // public URL advertised by the sse transport
}

// Server binds a Caller to an mcp-go server.
type Server struct {
	cfg    Config
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New registers every operation of ops as an MCP tool.
func New(ops Caller, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.With("component", "mcp"),
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	for _, d := range ops.List() {
		schema, err := json.Marshal(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("mcpserver: marshal schema for %s: %w", d.Name, err)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(d.Name, d.Description, schema), toolHandler(ops, d.Name))
	}
	s.logger.Debug("tools registered", "count", len(ops.List()))
	return s, nil
}

func toolHandler(ops Caller, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toMCP(ops.Call(ctx, name, req.GetArguments())), nil
	}
}

func toMCP(res protocol.CallResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{IsError: res.IsError}
	for _, c := range res.Content {
		out.Content = append(out.Content, mcp.NewTextContent(c.Text))
	}
	return out
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Start serves the configured transport. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	switch s.cfg.Transport {
	case TransportStdio, "":
		return s.serveStdio(ctx)
	case TransportSSE:
		var opts []server.SSEOption
		if s.cfg.BaseURL != "" {
			opts = append(opts, server.WithBaseURL(s.cfg.BaseURL))
		}
		return s.serveHTTP(ctx, server.NewSSEServer(s.mcp, opts...))
	case TransportHTTP:
		return s.serveHTTP(ctx, server.NewStreamableHTTPServer(s.mcp))
	default:
		return fmt.Errorf("mcpserver: unknown transport %q", s.cfg.Transport)
	}
}

func (s *Server) serveStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.New(os.Stderr, "mcp: ", log.LstdFlags))

	s.logger.Info("mcp server starting", "transport", TransportStdio)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcpserver: stdio: %w", err)
	}
	return nil
}

type httpTransport interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

func (s *Server) serveHTTP(ctx context.Context, t httpTransport) error {
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		t.Shutdown(shutCtx)
	}()

	s.logger.Info("mcp server starting", "transport", s.cfg.Transport, "addr", s.cfg.Addr)
	if err := t.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcpserver: %s: %w", s.cfg.Transport, err)
	}
	return nil
}
