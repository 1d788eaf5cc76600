package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/wagnerlima/memory-cloud/pattern-mcp/internal/models"
)

// MIME types understood by Import.
const (
	TypeJSON = "application/json"
	TypeText = "text/plain"
)

// File is one input to Import.
type File interface {
	Name() string
	Type() string
	Text(ctx context.Context) (string, error)
}

// InlineFile is a file whose content is already in memory.
type InlineFile struct {
	FileName string
	MIMEType string
	Content  string
}

func (f InlineFile) Name() string { return f.FileName }
func (f InlineFile) Type() string { return f.MIMEType }

func (f InlineFile) Text(context.Context) (string, error) { return f.Content, nil }

// DiskFile is a file on the local filesystem. Its type comes from the
// extension, falling back to content sniffing.
type DiskFile struct {
	Path string
}

func (f DiskFile) Name() string { return filepath.Base(f.Path) }

func (f DiskFile) Type() string {
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		return TypeJSON
	case ".txt", ".js", ".mjs", ".str", ".strudel":
		return TypeText
	}
	m, err := mimetype.DetectFile(f.Path)
	if err != nil {
		return "application/octet-stream"
	}
	switch {
	case m.Is(TypeJSON):
		return TypeJSON
	case m.Is(TypeText):
		return TypeText
	}
	return m.String()
}

func (f DiskFile) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var extension = regexp.MustCompile(`\.[^/.]+$`)

// patternIDFromFileName strips the last extension off name.
func patternIDFromFileName(name string) string {
	return extension.ReplaceAllString(name, "")
}

func mediaType(t string) string {
	mt, _, _ := strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Import reads files concurrently, at most limit at a time, then applies
// them in input order: JSON files are merged wholesale into the user
// collection and plain-text files become one pattern each, keyed by the file
// name without extension. When several JSON files carry the same id the later
// file wins. A file that cannot be read or parsed is skipped and reported in
// the returned error; the others are still applied.
func (l *Library) Import(ctx context.Context, files []File, limit int) (models.ImportResult, error) {
	type read struct {
		content string
		err     error
	}
	reads := make([]read, len(files))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				reads[i].err = err
				return nil
			}
			reads[i].content, reads[i].err = f.Text(ctx)
			return nil
		})
	}
	g.Wait()

	var (
		res  models.ImportResult
		errs []error
	)
	fail := func(name string, err error) {
		res.FilesFailed++
		res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, err))
		errs = append(errs, fmt.Errorf("import %s: %w", name, err))
	}

	for i, f := range files {
		if reads[i].err != nil {
			fail(f.Name(), reads[i].err)
			continue
		}
		switch mediaType(f.Type()) {
		case TypeJSON:
			n, err := l.mergeJSON(reads[i].content)
			if err != nil {
				fail(f.Name(), err)
				continue
			}
			res.FilesApplied++
			res.PatternsImported += n
		case TypeText:
			if _, err := l.User.Update(patternIDFromFileName(f.Name()), models.Pattern{Code: reads[i].content}); err != nil {
				fail(f.Name(), err)
				continue
			}
			res.FilesApplied++
			res.PatternsImported++
		default:
			l.log.Warn("skipping import file with unsupported type", "file", f.Name(), "type", f.Type())
			res.FilesSkipped++
		}
	}

	l.log.Info("import done",
		"applied", res.FilesApplied,
		"skipped", res.FilesSkipped,
		"failed", res.FilesFailed,
		"patterns", res.PatternsImported,
	)
	return res, errors.Join(errs...)
}

// importedPattern is a Pattern as found in someone else's export: ids may be
// numbers and created_at may be fractional.
type importedPattern struct {
	ID         any     `json:"id"`
	Code       string  `json:"code"`
	CreatedAt  float64 `json:"created_at"`
	Collection string  `json:"collection"`
}

func (l *Library) mergeJSON(content string) (int, error) {
	var raw map[string]importedPattern
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return 0, fmt.Errorf("parse json: %w", err)
	}
	incoming := make(map[string]models.Pattern, len(raw))
	for key, p := range raw {
		id, ok := p.ID.(string)
		if !ok || id == "" {
			id = key
		}
		incoming[key] = models.Pattern{
			ID:         id,
			Code:       p.Code,
			CreatedAt:  int64(p.CreatedAt),
			Collection: p.Collection,
		}
	}
	err := l.User.mutate(func(pats map[string]models.Pattern) error {
		for id, p := range incoming {
			pats[id] = p
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(incoming), nil
}

// Export serializes the whole user collection into a date-stamped file.
func (l *Library) Export() (models.ExportFile, error) {
	pats, err := l.User.GetAll()
	if err != nil {
		return models.ExportFile{}, err
	}
	data, err := json.Marshal(pats)
	if err != nil {
		return models.ExportFile{}, fmt.Errorf("encode export: %w", err)
	}
	return models.ExportFile{Name: ExportFileName(l.now()), Data: data}, nil
}

// ExportTo writes the export file into dir and returns its path.
func (l *Library) ExportTo(dir string) (string, error) {
	f, err := l.Export()
	if err != nil {
		return "", err
	}
	return l.WriteExport(dir, f)
}

// WriteExport writes f into dir, creating dir when needed.
func (l *Library) WriteExport(dir string, f models.ExportFile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, f.Name)
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	l.log.Info("patterns exported", "path", path)
	return path, nil
}

// ExportFileName is the name of an export taken at t, stamped with the UTC
// date.
func ExportFileName(t time.Time) string {
	return "strudel_patterns_" + t.UTC().Format("2006-01-02") + ".json"
}
