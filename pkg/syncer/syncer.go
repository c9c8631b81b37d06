// Package syncer keeps a component file and its component tree in step. It
// composes the reader and the writer and holds no per-file state.
package syncer

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/writer"
)

// Syncer loads component trees from source and writes them back.
type Syncer struct {
	reader *reader.Reader
	writer *writer.Writer
	logger *slog.Logger
}

// New creates a Syncer.
func New(r *reader.Reader, w *writer.Writer, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{reader: r, writer: w, logger: logger}
}

// Load parses source into its component tree and file metadata.
func (s *Syncer) Load(source []byte, filePath string, registry model.Registry) (*reader.Result, error) {
	return s.reader.Parse(source, filePath, registry)
}

// Update rewrites source to render in. A blank source is first replaced by
// an empty component named after the file. When in renders the same tree as
// the file already does, the markup is left exactly as written.
func (s *Syncer) Update(source []byte, filePath string, in writer.Input, registry model.Registry) ([]byte, error) {
	if len(bytes.TrimSpace(source)) == 0 {
		source = []byte(Template(filePath))
	} else if !in.KeepMarkup {
		current, err := s.reader.Parse(source, filePath, registry)
		if err != nil {
			s.logger.Debug("current file does not parse, regenerating markup",
				"path", filePath, "error", err)
		} else if model.StructurallyEqual(in.ComponentTree, current.ComponentTree) {
			in.KeepMarkup = true
		}
	}

	out, err := s.writer.Write(source, filePath, in, registry)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("updated component file",
		"path", filePath,
		"components", len(in.ComponentTree),
		"keep_markup", in.KeepMarkup,
		"changed", !bytes.Equal(out, source))
	return out, nil
}

// Template returns the source of an empty component for filePath.
func Template(filePath string) string {
	return fmt.Sprintf("export default function %s() {\n  return null;\n}\n", componentIdentifier(filePath))
}

// componentIdentifier turns a file's base name into a PascalCase identifier.
func componentIdentifier(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	var b strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteRune('C')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Page"
	}
	return b.String()
}
