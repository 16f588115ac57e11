// ABOUTME: Tests for MCP server, tools, and resources
// ABOUTME: Verifies MCP integration with the capture pipeline

package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/harper/geosnap/internal/app"
	"github.com/harper/geosnap/internal/camera"
	"github.com/harper/geosnap/internal/config"
	"github.com/harper/geosnap/internal/permission"
)

type stubCapturer struct{}

func (stubCapturer) TakePhoto(_ context.Context) (*camera.Frame, error) {
	return &camera.Frame{Data: []byte("jpeg-bytes"), Width: 640, Height: 480, Ext: ".jpg"}, nil
}

func (stubCapturer) Close() error { return nil }

type stubDriver struct{}

func (stubDriver) Devices(_ context.Context) ([]camera.Device, error) {
	return []camera.Device{{ID: 0, Name: "stub"}}, nil
}

func (stubDriver) Open(_ context.Context, _ int) (camera.Capturer, error) {
	return stubCapturer{}, nil
}

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{DataDir: dir, CacheDir: dir}

	a, err := app.New(cfg, app.Options{
		Authority: permission.AllGranted(),
		Driver:    stubDriver{},
	})
	if err != nil {
		t.Fatalf("failed to assemble app: %v", err)
	}
	t.Cleanup(a.Close)

	server, err := NewServer(a)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, a
}

func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t)
	if server.app == nil {
		t.Error("expected non-nil app")
	}
	if server.mcp == nil {
		t.Error("expected non-nil mcp server")
	}
}

func TestNewServer_NilApp(t *testing.T) {
	_, err := NewServer(nil)
	if err == nil {
		t.Error("expected error for nil app")
	}
}

func TestHandleCapture(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, _ := newTestServer(t)

	result, output, err := server.handleCapture(context.Background(), nil, CaptureInput{})
	if err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if output.Key == "" {
		t.Error("expected a record key")
	}
	if output.Position == nil {
		t.Error("expected capture to be tagged")
	}
	if output.PixelWidth != 640 || output.PixelHeight != 480 {
		t.Errorf("expected 640x480, got %dx%d", output.PixelWidth, output.PixelHeight)
	}
}

func TestHandleListImages(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, _ := newTestServer(t)

	if _, _, err := server.handleCapture(context.Background(), nil, CaptureInput{}); err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}
	if _, _, err := server.handleCapture(context.Background(), nil, CaptureInput{}); err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}

	result, output, err := server.handleListImages(context.Background(), nil, ListImagesInput{})
	if err != nil {
		t.Fatalf("handleListImages failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if output.Count != 2 {
		t.Errorf("expected count 2, got %d", output.Count)
	}
}

func TestHandleListImages_Empty(t *testing.T) {
	server, _ := newTestServer(t)

	_, output, err := server.handleListImages(context.Background(), nil, ListImagesInput{})
	if err != nil {
		t.Fatalf("handleListImages failed: %v", err)
	}
	if output.Count != 0 {
		t.Errorf("expected count 0, got %d", output.Count)
	}
}

func TestHandleGetImage(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, _ := newTestServer(t)

	_, captured, err := server.handleCapture(context.Background(), nil, CaptureInput{})
	if err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}

	_, output, err := server.handleGetImage(context.Background(), nil, GetImageInput{Key: captured.Key})
	if err != nil {
		t.Fatalf("handleGetImage failed: %v", err)
	}
	if output.Key != captured.Key {
		t.Errorf("expected key %s, got %s", captured.Key, output.Key)
	}
}

func TestHandleGetImage_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	_, _, err := server.handleGetImage(context.Background(), nil, GetImageInput{Key: "missing"})
	if err == nil {
		t.Error("expected error for missing key")
	}
}

func TestHandleDeleteImage(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, a := newTestServer(t)

	_, captured, err := server.handleCapture(context.Background(), nil, CaptureInput{})
	if err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}

	result, output, err := server.handleDeleteImage(context.Background(), nil, DeleteImageInput{Key: captured.Key})
	if err != nil {
		t.Fatalf("handleDeleteImage failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if !output.Success {
		t.Error("expected success to be true")
	}

	records, _ := a.ListImages()
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestHandleDeleteImage_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	_, _, err := server.handleDeleteImage(context.Background(), nil, DeleteImageInput{Key: "missing"})
	if err == nil {
		t.Error("expected error for missing key")
	}
}

func TestHandleNearbyImages(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, _ := newTestServer(t)

	if _, _, err := server.handleCapture(context.Background(), nil, CaptureInput{}); err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}

	input := NearbyImagesInput{Latitude: 41.88, Longitude: -87.63, RadiusKm: 5}
	_, output, err := server.handleNearbyImages(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleNearbyImages failed: %v", err)
	}
	if output.Count != 1 {
		t.Fatalf("expected 1 nearby image, got %d", output.Count)
	}
	if output.Images[0].DistanceKm > 5 {
		t.Errorf("expected distance within radius, got %f", output.Images[0].DistanceKm)
	}

	far := NearbyImagesInput{Latitude: -33.86, Longitude: 151.2, RadiusKm: 5}
	_, output, err = server.handleNearbyImages(context.Background(), nil, far)
	if err != nil {
		t.Fatalf("handleNearbyImages failed: %v", err)
	}
	if output.Count != 0 {
		t.Errorf("expected 0 nearby images, got %d", output.Count)
	}
}

func TestHandleNearbyImages_InvalidCoordinates(t *testing.T) {
	server, _ := newTestServer(t)

	input := NearbyImagesInput{Latitude: 100, Longitude: 0, RadiusKm: 5}
	_, _, err := server.handleNearbyImages(context.Background(), nil, input)
	if err == nil {
		t.Error("expected error for invalid coordinates")
	}
}

func TestHandleNearbyImages_InvalidRadius(t *testing.T) {
	server, _ := newTestServer(t)

	input := NearbyImagesInput{Latitude: 41.88, Longitude: -87.63, RadiusKm: 0}
	_, _, err := server.handleNearbyImages(context.Background(), nil, input)
	if err == nil {
		t.Error("expected error for non-positive radius")
	}
}

func TestHandlePermissionSnapshot(t *testing.T) {
	server, _ := newTestServer(t)

	_, output, err := server.handlePermissionSnapshot(context.Background(), nil, PermissionSnapshotInput{})
	if err != nil {
		t.Fatalf("handlePermissionSnapshot failed: %v", err)
	}
	if output.Camera != "granted" || output.Location != "granted" {
		t.Errorf("expected granted/granted, got %s/%s", output.Camera, output.Location)
	}
}

func TestHandleGalleryResource(t *testing.T) {
	t.Setenv("GEOSNAP_FIX", "41.8781,-87.6298")
	server, _ := newTestServer(t)

	if _, _, err := server.handleCapture(context.Background(), nil, CaptureInput{}); err != nil {
		t.Fatalf("handleCapture failed: %v", err)
	}

	result, err := server.handleGalleryResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleGalleryResource failed: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(result.Contents))
	}
	if result.Contents[0].URI != "geosnap://gallery" {
		t.Errorf("expected URI 'geosnap://gallery', got %q", result.Contents[0].URI)
	}
	if result.Contents[0].MIMEType != "application/json" {
		t.Errorf("expected MIME type 'application/json', got %q", result.Contents[0].MIMEType)
	}
	if !strings.Contains(result.Contents[0].Text, "\"count\": 1") {
		t.Errorf("expected count 1 in resource body, got %s", result.Contents[0].Text)
	}
}

func TestHandlePermissionsResource(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handlePermissionsResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("handlePermissionsResource failed: %v", err)
	}
	if result.Contents[0].URI != "geosnap://permissions" {
		t.Errorf("expected URI 'geosnap://permissions', got %q", result.Contents[0].URI)
	}
}
