// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Exposes capture, gallery, and permission operations to AI agents

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/geosnap/internal/geo"
	"github.com/harper/geosnap/internal/models"
	"github.com/harper/geosnap/internal/store"
)

func (s *Server) registerTools() {
	s.registerCaptureTool()
	s.registerImportImageTool()
	s.registerListImagesTool()
	s.registerGetImageTool()
	s.registerDeleteImageTool()
	s.registerNearbyImagesTool()
	s.registerPermissionSnapshotTool()
}

// PositionOutput describes a geotag on a record.
type PositionOutput struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Altitude   *float64  `json:"altitude,omitempty"`
	Accuracy   *float64  `json:"accuracy_meters,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// RecordOutput describes a stored record.
type RecordOutput struct {
	Key         string          `json:"key"`
	StoragePath string          `json:"storage_path"`
	PixelWidth  int             `json:"pixel_width"`
	PixelHeight int             `json:"pixel_height"`
	ByteSize    int64           `json:"byte_size"`
	CapturedAt  time.Time       `json:"captured_at"`
	SavedAt     time.Time       `json:"saved_at"`
	Position    *PositionOutput `json:"position,omitempty"`
}

func recordOutput(rec *models.StoredRecord) RecordOutput {
	out := RecordOutput{
		Key:         rec.Key,
		StoragePath: rec.StoragePath,
		PixelWidth:  rec.PixelWidth,
		PixelHeight: rec.PixelHeight,
		ByteSize:    rec.ByteSize,
		CapturedAt:  rec.CapturedAt,
		SavedAt:     rec.SavedAt,
	}
	if rec.Position != nil {
		out.Position = &PositionOutput{
			Latitude:   rec.Position.Latitude,
			Longitude:  rec.Position.Longitude,
			Altitude:   rec.Position.Altitude,
			Accuracy:   rec.Position.Accuracy,
			ObservedAt: rec.Position.ObservedAt,
		}
	}
	return out
}

func toolResult(output interface{}) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

// CaptureInput is empty but required for type.
type CaptureInput struct{}

func (s *Server) registerCaptureTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "capture",
		Description: "Capture a photo from the webcam, geotag it with the current device position, and persist it. Fails if the camera permission is denied or another capture is in flight.",
		InputSchema: map[string]interface{}{
			"type": "object",
		},
	}, s.handleCapture)
}

func (s *Server) handleCapture(ctx context.Context, req *mcp.CallToolRequest, input CaptureInput) (*mcp.CallToolResult, RecordOutput, error) {
	rec, err := s.app.Capture(ctx)
	if err != nil {
		return nil, RecordOutput{}, fmt.Errorf("capture failed: %w", err)
	}

	output := recordOutput(rec)
	return toolResult(output), output, nil
}

// ImportImageInput defines input for import_image tool.
type ImportImageInput struct {
	Path string `json:"path"`
}

func (s *Server) registerImportImageTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "import_image",
		Description: "Import an existing image file into the gallery, geotagging it with the current device position.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the image file to import",
				},
			},
			"required": []string{"path"},
		},
	}, s.handleImportImage)
}

func (s *Server) handleImportImage(ctx context.Context, req *mcp.CallToolRequest, input ImportImageInput) (*mcp.CallToolResult, RecordOutput, error) {
	rec, err := s.app.CaptureFile(ctx, input.Path)
	if err != nil {
		return nil, RecordOutput{}, fmt.Errorf("import failed: %w", err)
	}

	output := recordOutput(rec)
	return toolResult(output), output, nil
}

// ListImagesInput is empty but required for type.
type ListImagesInput struct{}

// ListImagesOutput defines output for list_images tool.
type ListImagesOutput struct {
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
}

func (s *Server) registerListImagesTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_images",
		Description: "List all stored images with their geotags, newest capture first.",
		InputSchema: map[string]interface{}{
			"type": "object",
		},
	}, s.handleListImages)
}

func (s *Server) handleListImages(_ context.Context, req *mcp.CallToolRequest, input ListImagesInput) (*mcp.CallToolResult, ListImagesOutput, error) {
	records, err := s.app.ListImages()
	if err != nil {
		return nil, ListImagesOutput{}, fmt.Errorf("failed to list images: %w", err)
	}

	recOutputs := make([]RecordOutput, len(records))
	for i, rec := range records {
		recOutputs[i] = recordOutput(rec)
	}

	output := ListImagesOutput{Records: recOutputs, Count: len(recOutputs)}
	return toolResult(output), output, nil
}

// GetImageInput defines input for get_image tool.
type GetImageInput struct {
	Key string `json:"key"`
}

func (s *Server) registerGetImageTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_image",
		Description: "Get a single stored image record by key.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Record key as shown by list_images",
				},
			},
			"required": []string{"key"},
		},
	}, s.handleGetImage)
}

func (s *Server) handleGetImage(_ context.Context, req *mcp.CallToolRequest, input GetImageInput) (*mcp.CallToolResult, RecordOutput, error) {
	rec, err := s.app.GetImage(input.Key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, RecordOutput{}, fmt.Errorf("image '%s' not found", input.Key)
		}
		return nil, RecordOutput{}, fmt.Errorf("failed to get image: %w", err)
	}

	output := recordOutput(rec)
	return toolResult(output), output, nil
}

// DeleteImageInput defines input for delete_image tool.
type DeleteImageInput struct {
	Key string `json:"key"`
}

// DeleteImageOutput defines output for delete_image tool.
type DeleteImageOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) registerDeleteImageTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_image",
		Description: "Delete a stored image and its metadata. This cannot be undone.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Record key as shown by list_images",
				},
			},
			"required": []string{"key"},
		},
	}, s.handleDeleteImage)
}

func (s *Server) handleDeleteImage(_ context.Context, req *mcp.CallToolRequest, input DeleteImageInput) (*mcp.CallToolResult, DeleteImageOutput, error) {
	rec, err := s.app.GetImage(input.Key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, DeleteImageOutput{}, fmt.Errorf("image '%s' not found", input.Key)
		}
		return nil, DeleteImageOutput{}, fmt.Errorf("failed to get image: %w", err)
	}

	if err := s.app.DeleteImage(rec); err != nil {
		return nil, DeleteImageOutput{}, fmt.Errorf("failed to delete image: %w", err)
	}

	output := DeleteImageOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted '%s' and its metadata", input.Key),
	}
	return toolResult(output), output, nil
}

// NearbyImagesInput defines input for nearby_images tool.
type NearbyImagesInput struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
}

// NearbyImageOutput pairs a record with its distance from the query point.
type NearbyImageOutput struct {
	Record     RecordOutput `json:"record"`
	DistanceKm float64      `json:"distance_km"`
}

// NearbyImagesOutput defines output for nearby_images tool.
type NearbyImagesOutput struct {
	Images []NearbyImageOutput `json:"images"`
	Count  int                 `json:"count"`
}

func (s *Server) registerNearbyImagesTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "nearby_images",
		Description: "Find geotagged images within a radius of a point. Untagged images are never returned.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude coordinate (-90 to 90)",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude coordinate (-180 to 180)",
				},
				"radius_km": map[string]interface{}{
					"type":        "number",
					"description": "Search radius in kilometers",
				},
			},
			"required": []string{"latitude", "longitude", "radius_km"},
		},
	}, s.handleNearbyImages)
}

func (s *Server) handleNearbyImages(_ context.Context, req *mcp.CallToolRequest, input NearbyImagesInput) (*mcp.CallToolResult, NearbyImagesOutput, error) {
	if err := models.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, NearbyImagesOutput{}, err
	}
	if input.RadiusKm <= 0 {
		return nil, NearbyImagesOutput{}, fmt.Errorf("radius must be positive, got %g", input.RadiusKm)
	}

	records, err := s.app.ListImages()
	if err != nil {
		return nil, NearbyImagesOutput{}, fmt.Errorf("failed to list images: %w", err)
	}

	byKey := make(map[string]*models.StoredRecord, len(records))
	for _, rec := range records {
		byKey[rec.Key] = rec
	}

	index := geo.FromRecords(records)
	hits, err := index.SearchRadius(input.Latitude, input.Longitude, input.RadiusKm)
	if err != nil {
		return nil, NearbyImagesOutput{}, fmt.Errorf("failed to search index: %w", err)
	}

	images := make([]NearbyImageOutput, 0, len(hits))
	for _, hit := range hits {
		rec, ok := byKey[hit.Key]
		if !ok {
			continue
		}
		images = append(images, NearbyImageOutput{
			Record:     recordOutput(rec),
			DistanceKm: geo.Haversine(input.Latitude, input.Longitude, hit.Lat, hit.Lng),
		})
	}

	output := NearbyImagesOutput{Images: images, Count: len(images)}
	return toolResult(output), output, nil
}

// PermissionSnapshotInput is empty but required for type.
type PermissionSnapshotInput struct{}

// PermissionSnapshotOutput defines output for permission_snapshot tool.
type PermissionSnapshotOutput struct {
	Camera   string `json:"camera"`
	Location string `json:"location"`
}

func (s *Server) registerPermissionSnapshotTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "permission_snapshot",
		Description: "Report the current camera and location permission statuses without prompting.",
		InputSchema: map[string]interface{}{
			"type": "object",
		},
	}, s.handlePermissionSnapshot)
}

func (s *Server) handlePermissionSnapshot(ctx context.Context, req *mcp.CallToolRequest, input PermissionSnapshotInput) (*mcp.CallToolResult, PermissionSnapshotOutput, error) {
	state := s.app.PermissionSnapshot(ctx)
	output := PermissionSnapshotOutput{
		Camera:   string(state.Camera),
		Location: string(state.Location),
	}
	return toolResult(output), output, nil
}
