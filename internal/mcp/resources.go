// ABOUTME: MCP resource definitions
// ABOUTME: Provides read-only views for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        "geosnap://gallery",
		Description: "All stored images with their geotags, newest capture first",
		URI:         "geosnap://gallery",
		MIMEType:    "application/json",
	}, s.handleGalleryResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        "geosnap://permissions",
		Description: "Current camera and location permission statuses",
		URI:         "geosnap://permissions",
		MIMEType:    "application/json",
	}, s.handlePermissionsResource)
}

func (s *Server) handleGalleryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.app.ListImages()
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	recOutputs := make([]RecordOutput, len(records))
	for i, rec := range records {
		recOutputs[i] = recordOutput(rec)
	}

	output := ListImagesOutput{Records: recOutputs, Count: len(recOutputs)}
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "geosnap://gallery",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}

func (s *Server) handlePermissionsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	state := s.app.PermissionSnapshot(ctx)
	output := PermissionSnapshotOutput{
		Camera:   string(state.Camera),
		Location: string(state.Location),
	}
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      "geosnap://permissions",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}
