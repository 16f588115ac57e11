// ABOUTME: Durable keyed storage of image bytes plus metadata sidecar records
// ABOUTME: Bytes-then-metadata write order; list is sorted by capture time descending

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/harper/geosnap/internal/metafile"
	"github.com/harper/geosnap/internal/models"
)

// MetaSuffix is the fixed suffix appended to an image artifact's name to form
// its metadata artifact's name.
const MetaSuffix = ".md"

// MediaStore persists (image bytes, metadata record) pairs under one private
// directory. Both artifacts exist or do not exist together; a crash between
// the two writes leaves an orphaned image, never a dangling metadata record.
type MediaStore struct {
	dir string
}

// NewMediaStore creates a store rooted at dir.
func NewMediaStore(dir string) (*MediaStore, error) {
	if err := metafile.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &MediaStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *MediaStore) Dir() string {
	return s.dir
}

// --- Metadata frontmatter ---

type positionMeta struct {
	Latitude   float64  `yaml:"latitude"`
	Longitude  float64  `yaml:"longitude"`
	Altitude   *float64 `yaml:"altitude,omitempty"`
	Accuracy   *float64 `yaml:"accuracy_meters,omitempty"`
	ObservedAt string   `yaml:"observed_at"`
}

type recordFrontmatter struct {
	Key         string         `yaml:"key"`
	StoragePath string         `yaml:"storage_path"`
	PixelWidth  int            `yaml:"pixel_width"`
	PixelHeight int            `yaml:"pixel_height"`
	ByteSize    int64          `yaml:"byte_size,omitempty"`
	CapturedAt  string         `yaml:"captured_at"`
	SavedAt     string         `yaml:"saved_at"`
	Position    *positionMeta  `yaml:"position,omitempty"`
	RawTags     map[string]any `yaml:"raw_tags,omitempty"`
}

func fromRecord(rec *models.StoredRecord) recordFrontmatter {
	fm := recordFrontmatter{
		Key:         rec.Key,
		StoragePath: rec.StoragePath,
		PixelWidth:  rec.PixelWidth,
		PixelHeight: rec.PixelHeight,
		ByteSize:    rec.ByteSize,
		CapturedAt:  metafile.FormatTime(rec.CapturedAt.UTC()),
		SavedAt:     metafile.FormatTime(rec.SavedAt.UTC()),
		RawTags:     rec.RawTags,
	}
	if rec.Position != nil {
		fm.Position = &positionMeta{
			Latitude:   rec.Position.Latitude,
			Longitude:  rec.Position.Longitude,
			Altitude:   rec.Position.Altitude,
			Accuracy:   rec.Position.Accuracy,
			ObservedAt: metafile.FormatTime(rec.Position.ObservedAt.UTC()),
		}
	}
	return fm
}

func (fm *recordFrontmatter) toRecord() (*models.StoredRecord, error) {
	capturedAt, err := metafile.ParseTime(fm.CapturedAt)
	if err != nil {
		return nil, fmt.Errorf("parse captured_at %q: %w", fm.CapturedAt, err)
	}
	savedAt, err := metafile.ParseTime(fm.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("parse saved_at %q: %w", fm.SavedAt, err)
	}

	rec := &models.StoredRecord{
		CapturedImage: models.CapturedImage{
			ContentRef:  fm.StoragePath,
			PixelWidth:  fm.PixelWidth,
			PixelHeight: fm.PixelHeight,
			ByteSize:    fm.ByteSize,
			CapturedAt:  capturedAt,
			RawTags:     fm.RawTags,
		},
		Key:         fm.Key,
		StoragePath: fm.StoragePath,
		SavedAt:     savedAt,
	}

	if fm.Position != nil {
		observedAt, err := metafile.ParseTime(fm.Position.ObservedAt)
		if err != nil {
			return nil, fmt.Errorf("parse observed_at %q: %w", fm.Position.ObservedAt, err)
		}
		rec.Position = &models.Position{
			Latitude:   fm.Position.Latitude,
			Longitude:  fm.Position.Longitude,
			Altitude:   fm.Position.Altitude,
			Accuracy:   fm.Position.Accuracy,
			ObservedAt: observedAt,
		}
	}
	return rec, nil
}

// --- Key derivation ---

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify reduces a name hint to a safe filename fragment.
func slugify(s string) string {
	s = slugStrip.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// deriveKey builds a storage key from the capture timestamp plus a UUID
// prefix. The prefix disambiguates same-millisecond captures; the timestamp
// alone is not unique under rapid successive shots.
func deriveKey(capturedAt time.Time, nameHint string) string {
	ts := capturedAt.UTC().Format("2006-01-02T15-04-05.000")
	key := fmt.Sprintf("%s-%s", ts, uuid.New().String()[:8])
	if slug := slugify(nameHint); slug != "" {
		key = key + "-" + slug
	}
	return key
}

// --- Operations ---

// Save copies the raw image bytes into the store's namespace under a derived
// unique key, then writes the metadata record referencing it. The two writes
// are sequential in bytes-then-metadata order. Each write is atomic
// (temp-then-rename), so readers never observe a partial artifact.
func (s *MediaStore) Save(img *models.CapturedImage, data []byte, ext, nameHint string) (*models.StoredRecord, error) {
	if ext == "" {
		ext = ".jpg"
	}

	key := deriveKey(img.CapturedAt, nameHint)
	imagePath := filepath.Join(s.dir, key+ext)

	if err := metafile.AtomicWrite(imagePath, data); err != nil {
		return nil, fmt.Errorf("write image bytes: %w", err)
	}

	rec := &models.StoredRecord{
		CapturedImage: *img,
		Key:           key,
		StoragePath:   imagePath,
		SavedAt:       time.Now(),
	}
	rec.ContentRef = imagePath
	if rec.ByteSize == 0 {
		rec.ByteSize = int64(len(data))
	}

	if err := s.writeMetadata(rec); err != nil {
		// The image artifact stays behind as a tolerated orphan; removing it
		// here could destroy the only copy of the capture.
		return nil, fmt.Errorf("write metadata: %w", err)
	}
	return rec, nil
}

// writeMetadata renders the sidecar for a record at StoragePath + MetaSuffix.
func (s *MediaStore) writeMetadata(rec *models.StoredRecord) error {
	fm := fromRecord(rec)

	body := fmt.Sprintf("\n%dx%d, captured %s\n",
		rec.PixelWidth, rec.PixelHeight, rec.CapturedAt.UTC().Format(time.RFC3339))
	if rec.Position != nil {
		body += fmt.Sprintf("at (%.4f, %.4f)\n", rec.Position.Latitude, rec.Position.Longitude)
	} else {
		body += "untagged\n"
	}

	content, err := metafile.RenderFrontmatter(&fm, body)
	if err != nil {
		return fmt.Errorf("render metadata: %w", err)
	}
	return metafile.AtomicWrite(metaPath(rec.StoragePath), []byte(content))
}

func metaPath(imagePath string) string {
	return imagePath + MetaSuffix
}

func readRecordFile(path string) (*models.StoredRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlStr, _ := metafile.ParseFrontmatter(string(data))
	if yamlStr == "" {
		return nil, fmt.Errorf("no frontmatter found in %s", path)
	}

	var fm recordFrontmatter
	if err := yaml.Unmarshal([]byte(yamlStr), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter in %s: %w", path, err)
	}
	return fm.toRecord()
}

// List enumerates all metadata records, most recent capture first. Each file
// is parsed independently; malformed records are skipped with a warning, not
// fatal, so one corrupt file cannot hide the rest of the gallery.
func (s *MediaStore) List() ([]*models.StoredRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store directory: %w", err)
	}

	var records []*models.StoredRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), MetaSuffix) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		rec, err := readRecordFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping unreadable record %s: %v\n", entry.Name(), err)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CapturedAt.Equal(records[j].CapturedAt) {
			return records[i].CapturedAt.After(records[j].CapturedAt)
		}
		return records[i].Key > records[j].Key
	})

	return records, nil
}

// Get returns the record with the given key.
func (s *MediaStore) Get(key string) (*models.StoredRecord, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Key == key {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes both the image bytes and the metadata record. Each removal
// is independently idempotent; the call fails with ErrNotFound only when
// neither part existed.
func (s *MediaStore) Delete(rec *models.StoredRecord) error {
	imageExisted, err := removeIfExists(rec.StoragePath)
	if err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	metaExisted, err := removeIfExists(metaPath(rec.StoragePath))
	if err != nil {
		return fmt.Errorf("remove metadata: %w", err)
	}

	if !imageExisted && !metaExisted {
		return ErrNotFound
	}
	return nil
}

func removeIfExists(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
