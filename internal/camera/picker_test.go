// ABOUTME: Tests for the gallery-pick file importer
// ABOUTME: Covers dimension decoding, missing files, and non-image input

package camera

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a small PNG and returns its path.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test image: %v", err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return path
}

func TestPickFile(t *testing.T) {
	path := writeTestPNG(t, 64, 48)

	picked, err := PickFile(path)
	if err != nil {
		t.Fatalf("PickFile failed: %v", err)
	}
	if picked.Width != 64 || picked.Height != 48 {
		t.Errorf("got %dx%d, want 64x48", picked.Width, picked.Height)
	}
	if picked.ByteSize <= 0 {
		t.Errorf("byte size = %d, want > 0", picked.ByteSize)
	}
	if picked.Path != path {
		t.Errorf("path = %q, want %q", picked.Path, path)
	}
}

func TestPickFile_Missing(t *testing.T) {
	_, err := PickFile(filepath.Join(t.TempDir(), "nope.jpg"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPickFile_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not pixels"), 0600); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	_, err := PickFile(path)
	if err == nil {
		t.Error("expected decode error for non-image file")
	}
}
