package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uisync/pkg/catalog"
	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/resolver"
	"github.com/gnana997/uisync/pkg/validator"
	"github.com/gnana997/uisync/pkg/writer"
)

// parseFileResult is the payload of parse_file.
type parseFileResult struct {
	Filepath      string                 `json:"filepath"`
	ComponentTree []model.ComponentState `json:"componentTree"`
	CSSImports    []string               `json:"cssImports"`
	FileMetadata  model.FileMetadata     `json:"fileMetadata"`
}

// updateFileArgs are the arguments of update_file.
type updateFileArgs struct {
	Path          string                 `json:"path"`
	ComponentTree []model.ComponentState `json:"componentTree"`
	CSSImports    []string               `json:"cssImports"`
	FileMetadata  *model.FileMetadata    `json:"fileMetadata"`
	DryRun        bool                   `json:"dry_run"`
}

// updateFileResult is the payload of update_file.
type updateFileResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	// Source is the rewritten file, returned for dry runs only.
	Source string `json:"source,omitempty"`
	// Violations are reported, never enforced: a tree may use components
	// the file imports without the registry knowing them.
	Violations []validator.Violation `json:"violations,omitempty"`
}

// resolvedImport is one entry of the resolve_imports payload.
type resolvedImport struct {
	Name      string `json:"name"`
	Specifier string `json:"specifier"`
	Module    bool   `json:"module,omitempty"`
	Named     bool   `json:"named,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func absPath(req mcp.CallToolRequest) (string, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return "", err
	}
	return filepath.Abs(p)
}

// readSource returns the contents of path, or nil when it does not exist.
func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return src, err
}

func (s *Server) handleListComponents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := model.FileMetadataKind(req.GetString("kind", ""))
	keyword := req.GetString("keyword", "")

	cat := catalog.FromEntries("registry", serverVersion, "", s.registry.Entries())
	qs := catalog.NewQueryService(cat, cat.BuildIndex())

	summaries := qs.ListEntries(kind, keyword)
	if len(summaries) == 0 {
		return mcp.NewToolResultText("no components found"), nil
	}
	return jsonResult(summaries)
}

func (s *Server) handleParseFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := absPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var src []byte
	if text := req.GetString("source", ""); text != "" {
		src = []byte(text)
	} else {
		src, err = os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
		}
	}

	res, err := s.syncer.Load(src, path, s.registry)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(parseFileResult{
		Filepath:      path,
		ComponentTree: res.ComponentTree,
		CSSImports:    res.CSSImports,
		FileMetadata:  res.FileMetadata,
	})
}

func (s *Server) handleUpdateFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateFileArgs
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	path, err := filepath.Abs(args.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	src, err := readSource(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}

	in := writer.Input{ComponentTree: args.ComponentTree, CSSImports: args.CSSImports, FileMetadata: args.FileMetadata}
	if in.CSSImports == nil && len(src) > 0 {
		// Omitted stylesheets stay as they are.
		if current, err := s.syncer.Load(src, path, s.registry); err == nil {
			in.CSSImports = current.CSSImports
		}
	}

	violations := s.validator.ValidateTree(args.ComponentTree).Violations

	if args.DryRun {
		out, err := s.syncer.Update(src, path, in, s.registry)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(updateFileResult{
			Path:       path,
			Changed:    !bytes.Equal(out, src),
			Source:     string(out),
			Violations: violations,
		})
	}

	if s.store == nil {
		return mcp.NewToolResultError("writing is disabled; pass dry_run to preview"), nil
	}
	changed, err := s.store.SaveFile(path, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(updateFileResult{Path: path, Changed: changed, Violations: violations})
}

func (s *Server) handleResolveImports(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Path          string                 `json:"path"`
		ComponentTree []model.ComponentState `json:"componentTree"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	path, err := filepath.Abs(args.Path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	set, err := resolver.Resolve(args.ComponentTree, s.registry, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]resolvedImport, 0, set.Len())
	for _, name := range set.Names() {
		spec, _ := set.Specifier(name)
		_, module := set.Modules[name]
		out = append(out, resolvedImport{Name: name, Specifier: spec, Module: module, Named: set.Named[name]})
	}
	return jsonResult(out)
}

func (s *Server) handleValidateTree(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ComponentTree []model.ComponentState `json:"componentTree"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if err := model.Validate(args.ComponentTree); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.validator.ValidateTree(args.ComponentTree))
}
