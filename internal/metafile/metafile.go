// ABOUTME: File helpers for metadata sidecar records
// ABOUTME: Atomic writes, YAML frontmatter rendering/parsing, and timestamp formats

package metafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeFormat is the canonical timestamp format used in metadata files.
// RFC3339 with millisecond precision so same-second captures stay ordered.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders a timestamp in the canonical metadata format.
func FormatTime(t time.Time) string {
	return t.Format(TimeFormat)
}

// ParseTime parses a timestamp written by FormatTime. Plain RFC3339 is
// accepted too so hand-edited files still load.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0750)
}

// AtomicWrite writes data to path via a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// RenderFrontmatter serializes v as YAML frontmatter followed by an
// optional markdown body.
func RenderFrontmatter(v interface{}, body string) (string, error) {
	yamlBytes, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(yamlBytes)
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String(), nil
}

// ParseFrontmatter splits a document into its YAML frontmatter and body.
// Returns an empty frontmatter string if the document has none.
func ParseFrontmatter(content string) (frontmatter, body string) {
	const delim = "---\n"
	if !strings.HasPrefix(content, delim) {
		return "", content
	}
	rest := content[len(delim):]
	end := strings.Index(rest, delim)
	if end < 0 {
		return "", content
	}
	return rest[:end], rest[end+len(delim):]
}
