package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/sourcefile"
	"github.com/gnana997/uisync/pkg/writer"
)

func newTestSyncer(t *testing.T) *Syncer {
	t.Helper()
	pm := parser.NewParserManager(nil)
	qm := queries.NewQueryManager(nil)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	analyzer := sourcefile.NewAnalyzer(pm, qm, nil)
	return New(
		reader.New(analyzer, model.NewSequentialUUIDs("n"), reader.DefaultConfig(), nil),
		writer.New(analyzer, qm, nil),
		nil,
	)
}

const handFormatted = `export default function Page() {
  return (
    <main>
      <div   className="a"/>
    </main>
  );
}
`

func TestUpdate_KeepsFormattingOfUnchangedMarkup(t *testing.T) {
	s := newTestSyncer(t)
	res, err := s.Load([]byte(handFormatted), "/app/src/pages/index.tsx", nil)
	require.NoError(t, err)

	// Fresh UUIDs, same structure.
	tree := make([]model.ComponentState, len(res.ComponentTree))
	copy(tree, res.ComponentTree)
	tree[0].UUID, tree[1].UUID, tree[1].ParentUUID = "x", "y", "x"

	out, err := s.Update([]byte(handFormatted), "/app/src/pages/index.tsx", writer.Input{ComponentTree: tree}, nil)
	require.NoError(t, err)
	assert.Equal(t, handFormatted, string(out))
}

func TestUpdate_RewritesChangedMarkup(t *testing.T) {
	s := newTestSyncer(t)
	res, err := s.Load([]byte(handFormatted), "/app/src/pages/index.tsx", nil)
	require.NoError(t, err)

	tree := append(res.ComponentTree, model.ComponentState{
		Kind: model.KindBuiltIn, UUID: "extra", ParentUUID: res.ComponentTree[0].UUID, ComponentName: "span",
	})
	out, err := s.Update([]byte(handFormatted), "/app/src/pages/index.tsx", writer.Input{ComponentTree: tree}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<div className="a" />`)
	assert.Contains(t, string(out), "<span />")
}

func TestUpdate_BlankSourceStartsFromTemplate(t *testing.T) {
	s := newTestSyncer(t)
	tree := []model.ComponentState{{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "main"}}

	for _, source := range []string{"", "  \n\n"} {
		out, err := s.Update([]byte(source), "/app/src/pages/about-us.tsx", writer.Input{ComponentTree: tree}, nil)
		require.NoError(t, err)
		assert.Equal(t, "export default function AboutUs() {\n  return (\n    <main />\n  );\n}\n", string(out))
	}
}

func TestUpdate_PropagatesWriteErrors(t *testing.T) {
	s := newTestSyncer(t)
	tree := []model.ComponentState{{Kind: model.KindStandard, UUID: "a", ComponentName: "Missing"}}

	_, err := s.Update([]byte(handFormatted), "/app/src/pages/index.tsx", writer.Input{ComponentTree: tree}, nil)
	require.Error(t, err)
	assert.True(t, writer.IsKind(err, writer.UnresolvedImport))
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/src/pages/index.tsx", "Index"},
		{"/src/pages/about-us.tsx", "AboutUs"},
		{"/src/pages/blog_post.tsx", "Blog_post"},
		{"/src/pages/404.tsx", "C404"},
		{"/src/pages/---.tsx", "Page"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, "export default function "+tt.want+"() {\n  return null;\n}\n", Template(tt.path))
		})
	}
}
