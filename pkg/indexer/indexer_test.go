package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/scanner"
	"github.com/gnana997/uisync/pkg/sourcefile"
	"github.com/gnana997/uisync/pkg/util"
)

const bannerSource = `export interface BannerProps {
  title: string;
}

export default function Banner(props: BannerProps) {
  return <h1 title={props.title} />;
}
`

const heroSource = `import Banner from "../components/Banner";

export default function Hero() {
  return <Banner title="hi" />;
}
`

type fixture struct {
	root    string
	scanner *scanner.Scanner
	indexer *Indexer
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "components", "Banner.tsx"), bannerSource)
	writeFile(t, filepath.Join(root, "src", "components", "Broken.tsx"), "export const x = 1;\n")
	writeFile(t, filepath.Join(root, "src", "modules", "Hero.tsx"), heroSource)
	writeFile(t, filepath.Join(root, "src", "pages", "index.tsx"), "export default function Index() { return null; }\n")

	pm := parser.NewParserManager(nil)
	qm := queries.NewQueryManager(nil)
	sources, err := util.NewSourceCache(util.DefaultSourceCacheConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		sources.Close()
		qm.Close()
		pm.Close()
	})

	sc, err := scanner.NewScanner(root, scanner.DefaultLayout(), scanner.DefaultScanConfig(), nil)
	require.NoError(t, err)
	r := reader.New(sourcefile.NewAnalyzer(pm, qm, nil), model.NewSequentialUUIDs("n"), reader.DefaultConfig(), nil)
	ix, err := New(r, sources, sc.Paths(), DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(ix.Close)

	return &fixture{root: root, scanner: sc, indexer: ix}
}

func (f *fixture) path(parts ...string) string {
	return filepath.Join(append([]string{f.root, "src"}, parts...)...)
}

func TestIndexWorkspace(t *testing.T) {
	f := newFixture(t)

	var calls int
	stats, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, func(indexed, total int, _ string) {
		calls++
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesFailed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, f.path("components", "Broken.tsx"), stats.Errors[0].FilePath)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"Banner", "Broken", "Hero"}, f.indexer.Names())
}

func TestLookup(t *testing.T) {
	f := newFixture(t)
	_, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, nil)
	require.NoError(t, err)

	t.Run("component", func(t *testing.T) {
		entry, ok := f.indexer.Lookup("Banner")
		require.True(t, ok)
		assert.Equal(t, f.path("components", "Banner.tsx"), entry.ImportPath)
		assert.Equal(t, model.FileKindComponent, entry.Metadata.Kind)
		assert.Equal(t, model.PropShape{"title": {Type: model.TypeString, Required: true}}, entry.Metadata.PropShape)
	})

	t.Run("module carries its tree", func(t *testing.T) {
		entry, ok := f.indexer.Lookup("Hero")
		require.True(t, ok)
		assert.Equal(t, model.FileKindModule, entry.Metadata.Kind)
		require.Len(t, entry.Metadata.ComponentTree, 1)
		assert.Equal(t, "Banner", entry.Metadata.ComponentTree[0].ComponentName)
		assert.Equal(t, model.KindStandard, entry.Metadata.ComponentTree[0].Kind)
	})

	t.Run("unparsable file still resolves", func(t *testing.T) {
		entry, ok := f.indexer.Lookup("Broken")
		require.True(t, ok)
		assert.Equal(t, f.path("components", "Broken.tsx"), entry.ImportPath)
		assert.Equal(t, model.MetadataUUIDFor(entry.ImportPath), entry.Metadata.MetadataUUID)

		rec, ok := f.indexer.Record("Broken")
		require.True(t, ok)
		assert.Error(t, rec.Err)
	})

	t.Run("pages are not components", func(t *testing.T) {
		_, ok := f.indexer.Lookup("index")
		assert.False(t, ok)
		assert.False(t, f.indexer.Register(f.path("pages", "about.tsx")))
	})

	stats := f.indexer.GetStats()
	assert.Equal(t, 3, stats.Entries)
	assert.Greater(t, stats.CacheHits, int64(0))
}

func TestInvalidateReparsesOnLookup(t *testing.T) {
	f := newFixture(t)
	_, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, nil)
	require.NoError(t, err)

	path := f.path("components", "Banner.tsx")
	writeFile(t, path, `export interface BannerProps {
  title: string;
  tone?: string;
}

export default function Banner(props: BannerProps) {
  return <h1 title={props.title} />;
}
`)
	f.indexer.Invalidate(path)
	assert.True(t, f.indexer.IsDirty(path))

	entry, ok := f.indexer.Lookup("Banner")
	require.True(t, ok)
	assert.Contains(t, entry.Metadata.PropShape, "tone")
	assert.False(t, f.indexer.IsDirty(path))
}

func TestRefreshKeepsUnchangedRecord(t *testing.T) {
	f := newFixture(t)
	path := f.path("components", "Banner.tsx")
	require.True(t, f.indexer.Register(path))

	first, err := f.indexer.Refresh(path)
	require.NoError(t, err)
	f.indexer.Invalidate(path)
	second, err := f.indexer.Refresh(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	_, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, nil)
	require.NoError(t, err)

	// A module with a component's name takes over when the component goes.
	dup := f.path("modules", "Banner.tsx")
	writeFile(t, dup, bannerSource)
	require.True(t, f.indexer.Register(dup))

	f.indexer.Remove(f.path("components", "Banner.tsx"))
	entry, ok := f.indexer.Lookup("Banner")
	require.True(t, ok)
	assert.Equal(t, dup, entry.ImportPath)

	f.indexer.Remove(dup)
	_, ok = f.indexer.Lookup("Banner")
	assert.False(t, ok)
}

func TestConcurrentLookups(t *testing.T) {
	f := newFixture(t)
	_, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				f.indexer.Invalidate(f.path("components", "Banner.tsx"))
			}
			_, ok := f.indexer.Lookup("Banner")
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
}

func TestIndexWorkspace_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := f.indexer.IndexWorkspace(ctx, f.scanner, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, stats.Cancelled)
}

func TestFileWatcher(t *testing.T) {
	f := newFixture(t)
	_, err := f.indexer.IndexWorkspace(context.Background(), f.scanner, nil)
	require.NoError(t, err)

	events := make(chan WatchEvent, 16)
	opts := DefaultWatchOptions()
	opts.DebounceMs = 20
	opts.OnEvent = func(e WatchEvent) { events <- e }

	w, err := NewFileWatcher(f.indexer, f.scanner, opts, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { w.Stop() })

	next := func(path string, op WatchOp) WatchEvent {
		t.Helper()
		timeout := time.After(5 * time.Second)
		for {
			select {
			case e := <-events:
				if e.FilePath == path && e.Op == op {
					return e
				}
			case <-timeout:
				t.Fatalf("no %s event for %s", op, path)
			}
		}
	}

	card := f.path("components", "Card.tsx")
	writeFile(t, card, "export default function Card() {\n  return <div />;\n}\n")
	e := next(card, OpChanged)
	assert.Equal(t, scanner.KindComponent, e.Kind)
	assert.NoError(t, e.Err)
	_, ok := f.indexer.Lookup("Card")
	assert.True(t, ok)

	require.NoError(t, os.Remove(card))
	next(card, OpRemoved)
	_, ok = f.indexer.Lookup("Card")
	assert.False(t, ok)

	require.NoError(t, w.Stop())
	assert.False(t, w.GetStats().IsRunning)
}
