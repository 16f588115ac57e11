// ABOUTME: Gallery-pick path that imports an existing image file
// ABOUTME: Decodes pixel dimensions and passes raw exiftool tags through untouched

package camera

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	exiftool "github.com/barasher/go-exiftool"
)

// PickedImage is an existing image selected instead of a live capture.
type PickedImage struct {
	Path     string
	Width    int
	Height   int
	ByteSize int64
	// RawTags is the file's metadata as reported by exiftool, passed through
	// without interpretation. Nil when exiftool is not installed.
	RawTags map[string]any
}

// PickFile reads an existing image file's dimensions and size. Raw tag
// extraction is best-effort: a missing exiftool binary or unreadable metadata
// never fails the pick.
func PickFile(path string) (*PickedImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	return &PickedImage{
		Path:     path,
		Width:    cfg.Width,
		Height:   cfg.Height,
		ByteSize: info.Size(),
		RawTags:  extractRawTags(path),
	}, nil
}

// extractRawTags shells out to exiftool via go-exiftool. Any failure reads
// as "no tags".
func extractRawTags(path string) map[string]any {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil
	}
	defer func() { _ = et.Close() }()

	metas := et.ExtractMetadata(path)
	if len(metas) == 0 || metas[0].Err != nil {
		return nil
	}
	if len(metas[0].Fields) == 0 {
		return nil
	}
	return metas[0].Fields
}
