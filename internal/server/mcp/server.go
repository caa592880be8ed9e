package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/diar/internal/diarize"
)

// Config holds MCP server configuration.
type Config struct {
	ServerName    string
	ServerVersion string
}

// Server exposes the diarization pipeline as MCP tools over stdio. One
// pipeline (and its engines) is shared across all tool calls; the engines
// were loaded once at process start.
type Server struct {
	config    Config
	mcpServer *sdk.Server
	pipeline  *diarize.Pipeline
}

// NewServer creates an MCP server around an already-initialized pipeline.
func NewServer(cfg Config, pipeline *diarize.Pipeline) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}

	s := &Server{
		config:   cfg,
		pipeline: pipeline,
	}

	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	s.registerTools()

	return s, nil
}

// Start serves MCP requests on stdin/stdout until the context ends.
func (s *Server) Start() error {
	return s.mcpServer.Run(context.Background(), &sdk.StdioTransport{})
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	return nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "diarize_audio",
		Description: "Diarize an audio file: detect speech segments and label them by speaker",
	}, s.handleDiarizeAudio)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "list_models",
		Description: "List downloaded transcription models",
	}, s.handleListModels)
}
