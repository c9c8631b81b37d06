// Package reader turns a component file into a component tree and its file
// metadata.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

// Config holds reader settings.
type Config struct {
	// ModulesSegment is the directory name that marks module files, both for
	// the file being read and for the import paths of its elements.
	ModulesSegment string
}

// DefaultConfig returns the studio layout defaults.
func DefaultConfig() Config {
	return Config{ModulesSegment: "modules"}
}

// Result is a successfully read file.
type Result struct {
	ComponentTree []model.ComponentState
	FileMetadata  model.FileMetadata
	CSSImports    []string
	Imports       []sourcefile.Import
}

// Reader parses component files. It holds no per-file state and is safe
// for concurrent use on distinct files.
type Reader struct {
	analyzer *sourcefile.Analyzer
	uuids    model.UUIDGenerator
	config   Config
	logger   *slog.Logger
}

// New creates a Reader. A nil uuids generator selects random UUIDs.
func New(analyzer *sourcefile.Analyzer, uuids model.UUIDGenerator, config Config, logger *slog.Logger) *Reader {
	if uuids == nil {
		uuids = model.RandomUUIDs
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.ModulesSegment == "" {
		config.ModulesSegment = DefaultConfig().ModulesSegment
	}
	return &Reader{analyzer: analyzer, uuids: uuids, config: config, logger: logger}
}

// Parse reads source, the text of the file at filePath. registry may be nil.
//
// Every failure is a *ParseError; on failure no tree is returned.
func (r *Reader) Parse(source []byte, filePath string, registry model.Registry) (*Result, error) {
	file, err := r.analyzer.Analyze(source, filePath)
	if err != nil {
		var syntaxErr *sourcefile.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ParseError{
				Kind:     InvalidSyntax,
				Filepath: filePath,
				Line:     syntaxErr.Line,
				Column:   syntaxErr.Column,
				Message:  fmt.Sprintf("syntax error near %q", syntaxErr.Near),
			}
		}
		return nil, &ParseError{Kind: InvalidSyntax, Filepath: filePath, Message: err.Error()}
	}
	defer file.Close()

	return r.read(file, registry)
}

// ParseFile reads an already analyzed file. The caller keeps ownership of
// file.
func (r *Reader) ParseFile(file *sourcefile.File, registry model.Registry) (*Result, error) {
	return r.read(file, registry)
}

func (r *Reader) read(file *sourcefile.File, registry model.Registry) (*Result, error) {
	comp := file.Component
	if comp == nil {
		return nil, &ParseError{Kind: NoDefaultExport, Filepath: file.Path,
			Message: "no default-exported component function"}
	}
	if comp.Return == nil || comp.Return.Bare {
		return nil, &ParseError{Kind: NoReturnStatement, Filepath: file.Path,
			Message: fmt.Sprintf("component %s has no return statement", sourcefile.ComponentName(comp, file.Path))}
	}

	w := &walker{
		file:       file,
		registry:   registry,
		uuids:      r.uuids,
		propsParam: comp.PropsParam,
		modules:    r.config.ModulesSegment,
	}
	if err := w.root(comp.Return.Markup); err != nil {
		return nil, err
	}

	md, err := r.metadata(file, w)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ComponentTree: w.tree,
		FileMetadata:  md,
		CSSImports:    []string{},
		Imports:       file.Imports,
	}
	for _, imp := range file.Imports {
		if imp.IsStylesheet() {
			res.CSSImports = append(res.CSSImports, imp.Source)
		}
	}
	if md.Kind == model.FileKindModule {
		res.FileMetadata.ComponentTree = w.tree
	}

	r.logger.Debug("parsed component file",
		"path", file.Path,
		"nodes", len(w.tree),
		"css_imports", len(res.CSSImports))
	return res, nil
}

func (r *Reader) metadata(file *sourcefile.File, w *walker) (model.FileMetadata, error) {
	md := model.FileMetadata{
		Kind:         model.FileKindComponent,
		Filepath:     file.Path,
		MetadataUUID: model.MetadataUUIDFor(file.Path),
	}
	if inSegment(file.Path, r.config.ModulesSegment) {
		md.Kind = model.FileKindModule
	}

	if decl := file.PropsDecl; decl != nil && decl.Object {
		md.PropShape = decl.Shape()
		_, md.AcceptsChildren = md.PropShape["children"]
	}

	if ip := file.InitialProps; ip != nil && ip.Object {
		md.InitialProps = make(model.PropValues, len(ip.Entries))
		for _, entry := range ip.Entries {
			if entry.Value == nil {
				md.InitialProps[entry.Key] = model.Expression(entry.Key, "")
				continue
			}
			var expected model.PropValueType
			if meta, ok := md.PropShape[entry.Key]; ok {
				expected = meta.Type
			}
			v, err := w.value(entry.Value, expected, false)
			if err != nil {
				return md, err
			}
			md.InitialProps[entry.Key] = v
		}
	}
	return md, nil
}

// inSegment reports whether p has a path segment equal to segment.
func inSegment(p, segment string) bool {
	if segment == "" {
		return false
	}
	slashed := "/" + strings.TrimPrefix(filepath.ToSlash(p), "./") + "/"
	return strings.Contains(slashed, "/"+segment+"/")
}

// resolveSpecifier turns an import specifier into a path: relative
// specifiers are joined with the importing file's directory, bare ones are
// returned as they are.
func resolveSpecifier(fromFile, specifier string) string {
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return path.Join(path.Dir(filepath.ToSlash(fromFile)), specifier)
	}
	return specifier
}
