package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/uisync/pkg/catalog"
	"github.com/gnana997/uisync/pkg/indexer"
	mcpserver "github.com/gnana997/uisync/pkg/mcp"
	"github.com/gnana997/uisync/pkg/mcplog"
	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/validator"
	"github.com/gnana997/uisync/pkg/writer"
)

// fileState is the JSON document parse prints and write reads.
type fileState struct {
	Filepath      string                 `json:"filepath"`
	ComponentTree []model.ComponentState `json:"componentTree"`
	CSSImports    []string               `json:"cssImports"`
	FileMetadata  *model.FileMetadata    `json:"fileMetadata,omitempty"`
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print a component file as a component tree",
		Long: `Parse the returned markup of a component file and print its component
tree, stylesheet imports and file metadata as JSON. The project is indexed
first so rendered components resolve to their metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.index(cmd.Context()); err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			res, err := a.syncer.Load(src, path, a.indexer)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fileState{
				Filepath:      path,
				ComponentTree: res.ComponentTree,
				CSSImports:    res.CSSImports,
				FileMetadata:  &res.FileMetadata,
			})
		},
	}
}

func newWriteCommand() *cobra.Command {
	var (
		treePath string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "write <file>",
		Short: "Rewrite a component file to render a component tree",
		Long: `Read a JSON document in the format parse prints (from --tree or stdin) and
rewrite the file so it renders that tree. Code outside the markup, the
component imports and the props declarations is kept byte for byte.`,
		Example: `  uisync parse src/pages/index.tsx > index.json
  uisync write src/pages/index.tsx --tree index.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if treePath != "" {
				f, err := os.Open(treePath)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var state fileState
			if err := json.NewDecoder(in).Decode(&state); err != nil {
				return fmt.Errorf("invalid tree document: %w", err)
			}

			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.index(cmd.Context()); err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			input := writer.Input{
				ComponentTree: state.ComponentTree,
				CSSImports:    state.CSSImports,
				FileMetadata:  state.FileMetadata,
			}
			for _, v := range validator.New(a.indexer, a.logger).ValidateTree(input.ComponentTree).Violations {
				a.logger.Warn(v.Message, "rule", v.Rule, "node", v.NodeUUID)
			}

			if dryRun {
				src, err := os.ReadFile(path)
				if err != nil && !os.IsNotExist(err) {
					return err
				}
				out, err := a.syncer.Update(src, path, input, a.indexer)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			changed, err := a.store.SaveFile(path, input)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&treePath, "tree", "", "JSON tree document (default: stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the rewritten file instead of writing it")
	return cmd
}

func newIndexCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the project's components and export a catalog",
		Long: `Parse every component and module file and export the registry as a
catalog JSON file. Without --out a summary is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.index(cmd.Context())
			if err != nil {
				return err
			}

			cat := catalog.FromEntries(filepath.Base(a.root), version, a.root, a.indexer.Entries())
			failed := make(map[string]string, len(stats.Errors))
			for _, fe := range stats.Errors {
				failed[fe.FilePath] = fe.Error.Error()
			}
			for i := range cat.Entries {
				cat.Entries[i].Error = failed[cat.Entries[i].ImportPath]
			}
			for _, verr := range cat.Validate() {
				a.logger.Warn("catalog entry is inconsistent", "error", verr)
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				if err := cat.WriteFile(outPath); err != nil {
					return err
				}
				fmt.Fprintf(w, "✓ Wrote %d entries to %s\n", len(cat.Entries), outPath)
				return nil
			}
			qs := catalog.NewQueryService(cat, cat.BuildIndex())
			printSummaryTable(w, qs.ListEntries("", ""))
			fmt.Fprintf(w, "\n%d files, %d indexed, %d failed (%dms)\n",
				stats.FilesDiscovered, stats.FilesIndexed, stats.FilesFailed, stats.TotalTimeMs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the catalog to this JSON file")
	return cmd
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <Name>",
		Short: "Show a component's props and module tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.index(cmd.Context()); err != nil {
				return err
			}

			entry, ok := a.indexer.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no component named %q", args[0])
			}
			e := catalog.Entry{
				Name:        entry.Name,
				Kind:        entry.Metadata.Kind,
				ImportPath:  entry.ImportPath,
				NamedExport: entry.NamedExport,
				Metadata:    entry.Metadata,
			}
			if rec, ok := a.indexer.Record(entry.Name); ok && rec.Err != nil {
				e.Error = rec.Err.Error()
			}
			printEntryHuman(cmd.OutOrStdout(), &e, a.root)
			return nil
		},
	}
}

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Index the project and report component changes as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()
			if _, err := a.index(ctx); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fw, err := a.watch(func(ev indexer.WatchEvent) {
				rel, _ := filepath.Rel(a.root, ev.FilePath)
				switch {
				case ev.Err != nil:
					fmt.Fprintf(w, "✗ %s  %s: %v\n", ev.Op, rel, ev.Err)
				default:
					fmt.Fprintf(w, "• %s  %s (%s)\n", ev.Op, rel, ev.Kind)
				}
			})
			if err != nil {
				return err
			}
			defer fw.Stop()

			fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", a.scanner.Paths().Src)
			<-ctx.Done()
			return nil
		},
	}
}

// watch starts a file watcher that keeps the registry fresh.
func (a *app) watch(onEvent func(indexer.WatchEvent)) (*indexer.FileWatcher, error) {
	opts := indexer.DefaultWatchOptions()
	opts.DebounceMs = a.cfg.DebounceMs
	opts.OnEvent = onEvent
	fw, err := indexer.NewFileWatcher(a.indexer, a.scanner, opts, a.logger)
	if err != nil {
		return nil, err
	}
	if err := fw.Start(); err != nil {
		return nil, err
	}
	return fw, nil
}

func newServeCommand() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdin/stdout",
		Long: `Serve list_components, parse_file, update_file, resolve_imports and
validate_tree to an MCP client over stdio. The registry is the live project index, kept fresh
by a file watcher, or a catalog exported by "uisync index --out".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			callLog, err := mcplog.NewLogger(a.cfg.MCPLog)
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}

			var registry mcpserver.Registry = a.indexer
			if catalogPath != "" {
				qs, err := catalog.LoadAndQuery(catalogPath)
				if err != nil {
					return fmt.Errorf("failed to load catalog: %w", err)
				}
				registry = qs
			} else {
				if _, err := a.index(cmd.Context()); err != nil {
					return err
				}
				fw, err := a.watch(nil)
				if err != nil {
					return err
				}
				defer fw.Stop()
			}

			srv := mcpserver.NewServer(registry, a.syncer, a.store, callLog)
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "serve this catalog instead of indexing the project")
	return cmd
}
