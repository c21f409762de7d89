// Package mcpserver exposes the retrieval, prediction and severity pipeline
// as Model Context Protocol tools over streamable HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/dispatchrag/internal/domain/prediction"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/retrieval"
	"github.com/matiasleandrokruk/dispatchrag/internal/domain/severity"
)

// ErrMissingRetriever is returned by New when Ports.Retriever is nil.
var ErrMissingRetriever = errors.New("mcpserver: retriever is required")

type Predictor interface {
	Generate(ctx context.Context, req prediction.Request) (*prediction.Prediction, error)
}

type Classifier interface {
	Classify(ctx context.Context, transcript, fullContext string) severity.Level
}

type Retriever interface {
	Retrieve(query string, k int) retrieval.Result
}

// Ports are the domain services the tools call. Predictor and Classifier
// are optional; their tools are only registered when set.
type Ports struct {
	Retriever  Retriever
	Predictor  Predictor
	Classifier Classifier
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}

// Server wraps an mcp.Server with the dispatchrag tools registered.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// New creates a Server identified as name/version to MCP clients.
func New(ports *Ports, name, version string) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingRetriever
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	s := &Server{
		ports:  ports,
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
	s.registerTools()
	return s, nil
}

// MCP returns the underlying SDK server (for in-process transports).
func (s *Server) MCP() *mcp.Server { return s.server }

// Run serves the tools over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable-HTTP handler suitable for mounting on a router.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
