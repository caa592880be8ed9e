package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/emmett/diar/internal/models"
)

// DiarizeArgs are the arguments of the diarize_audio tool.
type DiarizeArgs struct {
	Path      string  `json:"path" jsonschema:"required,description=Filesystem path of the audio file (WAV)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"description=Cosine-distance cluster cutoff (default: 0.7)"`
}

// ListModelsArgs are the arguments of the list_models tool.
type ListModelsArgs struct{}

// handleDiarizeAudio runs the pipeline and returns the same single
// structured object the CLI emits, as JSON text content.
func (s *Server) handleDiarizeAudio(ctx context.Context, req *sdk.CallToolRequest, args DiarizeArgs) (*sdk.CallToolResult, any, error) {
	if args.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}

	pipeline := s.pipeline
	if args.Threshold > 0 {
		pipeline = pipeline.WithThreshold(args.Threshold)
	}

	result, err := pipeline.Run(ctx, args.Path)
	if err != nil {
		body, merr := json.Marshal(map[string]string{"error": err.Error()})
		if merr != nil {
			return nil, nil, merr
		}
		return &sdk.CallToolResult{
			Content: []sdk.Content{&sdk.TextContent{Text: string(body)}},
			IsError: true,
		}, nil, nil
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(body)}},
	}, nil, nil
}

func (s *Server) handleListModels(ctx context.Context, req *sdk.CallToolRequest, args ListModelsArgs) (*sdk.CallToolResult, any, error) {
	downloaded, err := models.ListDownloaded()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list models: %w", err)
	}

	content := []sdk.Content{
		&sdk.TextContent{Text: fmt.Sprintf("Downloaded models (%d):", len(downloaded))},
	}
	for _, model := range downloaded {
		content = append(content, &sdk.TextContent{Text: fmt.Sprintf("- %s", model)})
	}

	return &sdk.CallToolResult{Content: content}, nil, nil
}
