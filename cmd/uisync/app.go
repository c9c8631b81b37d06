package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/uisync/pkg/indexer"
	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/scanner"
	"github.com/gnana997/uisync/pkg/sourcefile"
	"github.com/gnana997/uisync/pkg/syncer"
	"github.com/gnana997/uisync/pkg/util"
	"github.com/gnana997/uisync/pkg/workspace"
	"github.com/gnana997/uisync/pkg/writer"
)

// app wires the packages together for one project root.
type app struct {
	root   string
	cfg    ProjectConfig
	logger *slog.Logger

	parsers *parser.ParserManager
	queries *queries.QueryManager
	sources *util.SourceCache
	scanner *scanner.Scanner
	indexer *indexer.Indexer
	syncer  *syncer.Syncer
	store   *workspace.Store
}

func newApp(flags globalFlags) (*app, error) {
	root, err := filepath.Abs(flags.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg, err := resolveConfig(root, flags)
	if err != nil {
		return nil, err
	}

	level, err := util.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := util.ParseLogFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	logger := util.NewLogger(util.LoggerConfig{Level: level, Format: format, Output: os.Stderr})

	sc, err := scanner.NewScanner(root, cfg.Layout, scanner.DefaultScanConfig(), logger)
	if err != nil {
		return nil, err
	}

	cacheCfg := util.DefaultSourceCacheConfig()
	cacheCfg.Logger = logger
	sources, err := util.NewSourceCache(cacheCfg)
	if err != nil {
		return nil, err
	}

	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(logger)
	analyzer := sourcefile.NewAnalyzer(pm, qm, logger)
	rd := reader.New(analyzer, model.RandomUUIDs, reader.Config{ModulesSegment: filepath.Base(cfg.ModulesDir)}, logger)

	ixCfg := indexer.DefaultConfig()
	ixCfg.Debug = level == util.LevelDebug
	ix, err := indexer.New(rd, sources, sc.Paths(), ixCfg, logger)
	if err != nil {
		_ = qm.Close()
		_ = pm.Close()
		_ = sources.Close()
		return nil, err
	}

	sy := syncer.New(rd, writer.New(analyzer, qm, logger), logger)
	return &app{
		root:    root,
		cfg:     cfg,
		logger:  logger,
		parsers: pm,
		queries: qm,
		sources: sources,
		scanner: sc,
		indexer: ix,
		syncer:  sy,
		store:   workspace.NewStore(sy, ix, sc, logger),
	}, nil
}

// index builds the registry. Files that fail to parse are reported and
// stay registered.
func (a *app) index(ctx context.Context) (*indexer.ScanStats, error) {
	stats, err := a.indexer.IndexWorkspace(ctx, a.scanner, nil)
	if err != nil {
		return stats, err
	}
	for _, fe := range stats.Errors {
		a.logger.Warn("component did not parse", "path", fe.FilePath, "error", fe.Error)
	}
	a.logger.Info("indexed project",
		"root", a.root,
		"files", stats.FilesDiscovered,
		"indexed", stats.FilesIndexed,
		"failed", stats.FilesFailed,
		"ms", stats.TotalTimeMs)
	return stats, nil
}

func (a *app) Close() {
	a.indexer.Close()
	_ = a.queries.Close()
	_ = a.parsers.Close()
	_ = a.sources.Close()
}
