package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries"
	"github.com/gnana997/uisync/pkg/reader"
	"github.com/gnana997/uisync/pkg/resolver"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

const pagePath = "/app/src/pages/index.tsx"

const bannerPage = `import Banner from "../components/Banner";

export default function IndexPage() {
  return (
    <>
      <div className="container">
        <Banner title="first" />
        <Banner title="second" />
      </div>
    </>
  );
}
`

type harness struct {
	reader *reader.Reader
	writer *Writer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pm := parser.NewParserManager(nil)
	qm := queries.NewQueryManager(nil)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	analyzer := sourcefile.NewAnalyzer(pm, qm, nil)
	return &harness{
		reader: reader.New(analyzer, model.NewSequentialUUIDs("n"), reader.DefaultConfig(), nil),
		writer: New(analyzer, qm, nil),
	}
}

func (h *harness) parse(t *testing.T, source, path string, reg model.Registry) *reader.Result {
	t.Helper()
	res, err := h.reader.Parse([]byte(source), path, reg)
	require.NoError(t, err)
	return res
}

func (h *harness) write(t *testing.T, source, path string, in Input, reg model.Registry) string {
	t.Helper()
	out, err := h.writer.Write([]byte(source), path, in, reg)
	require.NoError(t, err)
	return string(out)
}

func footerRegistry() model.StaticRegistry {
	reg := model.StaticRegistry{}
	reg.Add(model.RegistryEntry{Name: "Footer", ImportPath: "/app/src/components/Footer.tsx"})
	reg.Add(model.RegistryEntry{Name: "Banner", ImportPath: "/app/src/components/Banner.tsx"})
	return reg
}

func TestWrite_AddsFooter(t *testing.T) {
	h := newHarness(t)
	res := h.parse(t, bannerPage, pagePath, nil)

	tree := append(res.ComponentTree, model.ComponentState{
		Kind: model.KindStandard, UUID: "footer", ParentUUID: "n-1", ComponentName: "Footer",
	})
	out := h.write(t, bannerPage, pagePath, Input{ComponentTree: tree, CSSImports: res.CSSImports}, footerRegistry())

	assert.Equal(t, `import Banner from "../components/Banner";
import Footer from "../components/Footer";

export default function IndexPage() {
  return (
    <>
      <div className="container">
        <Banner title="first" />
        <Banner title="second" />
        <Footer />
      </div>
    </>
  );
}
`, out)
}

func TestWrite_KeepsAttributeOrderAndQuotes(t *testing.T) {
	h := newHarness(t)
	source := `import Banner from "../components/Banner";

export default function IndexPage() {
  return (
    <div>
      <Banner title='first' count={1} />
    </div>
  );
}
`
	res := h.parse(t, source, pagePath, nil)
	require.Len(t, res.ComponentTree, 2)

	t.Run("untouched sibling of a new node", func(t *testing.T) {
		tree := append(append([]model.ComponentState(nil), res.ComponentTree...), model.ComponentState{
			Kind: model.KindStandard, UUID: "footer", ParentUUID: "n-0", ComponentName: "Footer",
		})
		out := h.write(t, source, pagePath, Input{ComponentTree: tree}, footerRegistry())

		assert.Equal(t, `import Banner from "../components/Banner";
import Footer from "../components/Footer";

export default function IndexPage() {
  return (
    <div>
      <Banner title='first' count={1} />
      <Footer />
    </div>
  );
}
`, out)
	})

	t.Run("new prop goes last", func(t *testing.T) {
		tree := append([]model.ComponentState(nil), res.ComponentTree...)
		banner := tree[1]
		banner.Props = model.PropValues{
			"title": banner.Props["title"],
			"count": banner.Props["count"],
			"tone":  model.StringLiteral("dark"),
		}
		tree[1] = banner
		out := h.write(t, source, pagePath, Input{ComponentTree: tree}, footerRegistry())
		assert.Contains(t, out, "<Banner title='first' count={1} tone='dark' />")
	})
}

func TestWrite_CharacterReferencesSurviveRoundTrip(t *testing.T) {
	h := newHarness(t)
	source := "export default function Page() {\n  return <div title={\"a &amp; b\"} alt=\"x &amp; y\" />;\n}\n"
	res := h.parse(t, source, pagePath, nil)
	require.Len(t, res.ComponentTree, 1)
	require.Equal(t, model.StringLiteral("a &amp; b"), res.ComponentTree[0].Props["title"])

	out := h.write(t, source, pagePath, Input{ComponentTree: res.ComponentTree}, nil)
	assert.Contains(t, out, `title={"a &amp; b"}`)
	assert.Contains(t, out, `alt={"x & y"}`)

	again := h.parse(t, out, pagePath, nil)
	assert.Equal(t, res.ComponentTree[0].Props, again.ComponentTree[0].Props)
}

func TestWrite_RemovesComponentsAndUnusedImports(t *testing.T) {
	h := newHarness(t)
	res := h.parse(t, bannerPage, pagePath, nil)

	t.Run("one banner left keeps the import", func(t *testing.T) {
		tree := res.ComponentTree[:3]
		out := h.write(t, bannerPage, pagePath, Input{ComponentTree: tree}, nil)
		assert.Contains(t, out, `import Banner from "../components/Banner";`)
		assert.Equal(t, 1, strings.Count(out, "<Banner"))
	})

	t.Run("no banner left drops the import", func(t *testing.T) {
		tree := res.ComponentTree[:2]
		out := h.write(t, bannerPage, pagePath, Input{ComponentTree: tree}, nil)
		assert.Equal(t, `export default function IndexPage() {
  return (
    <>
      <div className="container" />
    </>
  );
}
`, out)
	})
}

func TestWrite_CSSImports(t *testing.T) {
	h := newHarness(t)
	source := "export default function Page() {\n  return <div />;\n}\n"
	res := h.parse(t, source, pagePath, nil)

	out := h.write(t, source, pagePath, Input{
		ComponentTree: res.ComponentTree,
		CSSImports:    []string{"../index.css", "./App.css"},
	}, nil)

	assert.Equal(t, `import "../index.css";
import "./App.css";

export default function Page() {
  return (
    <div />
  );
}
`, out)

	again := h.parse(t, out, pagePath, nil)
	assert.Equal(t, []string{"../index.css", "./App.css"}, again.CSSImports)

	cleared := h.write(t, out, pagePath, Input{ComponentTree: again.ComponentTree, CSSImports: []string{"./App.css"}}, nil)
	assert.NotContains(t, cleared, "index.css")
	assert.Contains(t, cleared, `import "./App.css";`)
}

func TestWrite_AddsPropShapeAndInitialProps(t *testing.T) {
	h := newHarness(t)
	source := "export default function Panel() {\n  return <div />;\n}\n"
	res := h.parse(t, source, "/app/src/modules/Panel.tsx", nil)

	md := res.FileMetadata
	md.PropShape = model.PropShape{
		"title": {Type: model.TypeString, Doc: "Panel title.", Required: true},
		"count": {Type: model.TypeNumber},
	}
	md.InitialProps = model.PropValues{
		"title": model.StringLiteral("Hello"),
		"count": model.NumberLiteral(3),
	}
	out := h.write(t, source, "/app/src/modules/Panel.tsx", Input{
		ComponentTree: res.ComponentTree,
		FileMetadata:  &md,
		KeepMarkup:    true,
	}, nil)

	assert.Equal(t, `export interface PanelProps {
  count?: number;
  /** Panel title. */
  title: string;
}

export const initialProps: PanelProps = {
  count: 3,
  title: "Hello",
};

export default function Panel(props: PanelProps) {
  return <div />;
}
`, out)

	again := h.parse(t, out, "/app/src/modules/Panel.tsx", nil)
	assert.Equal(t, md.PropShape, again.FileMetadata.PropShape)
	assert.Equal(t, md.InitialProps, again.FileMetadata.InitialProps)
}

func TestWrite_UpdatesPropShapeInPlace(t *testing.T) {
	h := newHarness(t)
	source := `import { ReactNode } from "react";

export interface CardProps {
  /** Card heading. */
  title: string;
  // legacy
  size?: number;
  children?: ReactNode;
}

export default function Card(props: CardProps) {
  return <div />;
}
`
	res := h.parse(t, source, "/app/src/components/Card.tsx", nil)
	md := res.FileMetadata
	md.PropShape = model.PropShape{
		"title": {Type: model.TypeString, Doc: "Card heading.", Required: true},
		"size":  {Type: model.TypeString, Doc: "legacy"},
		"tone":  {Type: model.TypeString, Required: true, Unions: []string{"light", "dark"}},
	}

	out := h.write(t, source, "/app/src/components/Card.tsx", Input{
		ComponentTree: res.ComponentTree,
		FileMetadata:  &md,
		KeepMarkup:    true,
	}, nil)

	assert.Equal(t, `import { ReactNode } from "react";

export interface CardProps {
  /** Card heading. */
  title: string;
  // legacy
  size?: string;
  tone: "light" | "dark";
}

export default function Card(props: CardProps) {
  return <div />;
}
`, out)
}

func TestWrite_RegeneratesNonObjectPropsDeclaration(t *testing.T) {
	h := newHarness(t)
	source := `type BaseProps = { id: string };

type CardProps = BaseProps & { extra: number };

export default function Card(props: CardProps) {
  return <div />;
}
`
	res := h.parse(t, source, "/app/src/components/Card.tsx", nil)
	md := res.FileMetadata
	md.PropShape = model.PropShape{"id": {Type: model.TypeString, Required: true}}

	out := h.write(t, source, "/app/src/components/Card.tsx", Input{
		ComponentTree: res.ComponentTree,
		FileMetadata:  &md,
		KeepMarkup:    true,
	}, nil)

	assert.Contains(t, out, "type BaseProps = { id: string };")
	assert.Contains(t, out, "interface CardProps {\n  id: string;\n}")
	assert.NotContains(t, out, "BaseProps &")
}

func TestWrite_UpdatesInitialPropsInPlace(t *testing.T) {
	h := newHarness(t)
	source := `export const initialProps = {
  title: "Hello",
  size: 1,
  onClick: () => track("x"),
};

export default function Card() {
  return <div />;
}
`
	res := h.parse(t, source, "/app/src/components/Card.tsx", nil)
	md := res.FileMetadata
	md.InitialProps = model.PropValues{
		"title":   model.StringLiteral("Hi"),
		"onClick": md.InitialProps["onClick"],
		"count":   model.NumberLiteral(2),
	}

	out := h.write(t, source, "/app/src/components/Card.tsx", Input{
		ComponentTree: res.ComponentTree,
		FileMetadata:  &md,
		KeepMarkup:    true,
	}, nil)

	assert.Equal(t, `export const initialProps = {
  title: "Hi",
  onClick: () => track("x"),
  count: 2,
};

export default function Card() {
  return <div />;
}
`, out)
}

func TestWrite_PreservesUnrelatedCode(t *testing.T) {
	h := newHarness(t)
	helper := `// formatTitle is shared with the sitemap.
function formatTitle(s: string): string {
  return s.toUpperCase();
}
`
	source := `import Banner from "../components/Banner";

` + helper + `
export default function IndexPage() {
  return <Banner title="x" />;
}

export const config = { runtime: "edge" };
`
	res := h.parse(t, source, pagePath, nil)
	tree := res.ComponentTree
	tree[0].Props = model.PropValues{"title": model.StringLiteral("y")}

	out := h.write(t, source, pagePath, Input{ComponentTree: tree}, nil)
	assert.Contains(t, out, "\n\n"+helper+"\n")
	assert.True(t, strings.HasSuffix(out, "}\n\nexport const config = { runtime: \"edge\" };\n"))
	assert.Contains(t, out, `<Banner title="y" />`)
}

func TestWrite_Idempotent(t *testing.T) {
	h := newHarness(t)
	res := h.parse(t, bannerPage, pagePath, nil)
	tree := append(res.ComponentTree, model.ComponentState{
		Kind: model.KindStandard, UUID: "footer", ParentUUID: "n-0", ComponentName: "Footer",
		Props: model.PropValues{"links": model.List(model.StringLiteral("a"), model.StringLiteral("b"))},
	})

	once := h.write(t, bannerPage, pagePath, Input{ComponentTree: tree}, footerRegistry())
	reparsed := h.parse(t, once, pagePath, footerRegistry())
	twice := h.write(t, once, pagePath, Input{
		ComponentTree: reparsed.ComponentTree,
		CSSImports:    reparsed.CSSImports,
		FileMetadata:  &reparsed.FileMetadata,
	}, footerRegistry())

	assert.Equal(t, once, twice)
}

func TestWrite_RoundTrip(t *testing.T) {
	h := newHarness(t)
	template := "export default function Page(props: PageProps) {\n  return null;\n}\n"
	tree := []model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "main", ComponentName: "main",
			Props: model.PropValues{"id": model.StringLiteral(`say "hi"`)}},
		{Kind: model.KindStandard, UUID: "banner", ParentUUID: "main", ComponentName: "Banner",
			Props: model.PropValues{
				"title":  model.PropRef("heading"),
				"count":  model.NumberLiteral(-1.5),
				"active": model.BoolLiteral(false),
				"style": {Kind: model.ValueKindLiteral, ValueType: model.TypeObject, Value: model.PropValues{
					"margin-top": model.NumberLiteral(4),
				}},
				"onClick": model.Expression("() => alert(1)", ""),
			}},
		{Kind: model.KindRepeater, UUID: "rep", ParentUUID: "main", ListExpression: "document.items",
			RepeatedComponent: &model.ComponentState{Kind: model.KindStandard, ComponentName: "Banner",
				Props: model.PropValues{"title": model.StringLiteral("x")}}},
		{Kind: model.KindBuiltIn, UUID: "inner", ParentUUID: "rep", ComponentName: "span"},
	}

	out := h.write(t, template, pagePath, Input{ComponentTree: tree}, footerRegistry())
	assert.Contains(t, out, "{document.items.map((item, index) => (\n")
	assert.Contains(t, out, `<Banner key={index} title="x">`)
	assert.Contains(t, out, `id={"say \"hi\""}`)

	res := h.parse(t, out, pagePath, footerRegistry())
	assert.True(t, model.StructurallyEqual(tree, res.ComponentTree), "got %+v", res.ComponentTree)
}

func TestWrite_RepeaterRoundTrip(t *testing.T) {
	h := newHarness(t)
	template := "export default function Page() {\n  return null;\n}\n"
	tree := []model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "list", ComponentName: "ul"},
		{Kind: model.KindRepeater, UUID: "rep", ParentUUID: "list", ListExpression: "services",
			RepeatedComponent: &model.ComponentState{Kind: model.KindStandard, ComponentName: "Banner",
				Props: model.PropValues{"title": model.StringLiteral("svc")}}},
	}

	out := h.write(t, template, pagePath, Input{ComponentTree: tree}, footerRegistry())
	assert.Contains(t, out, `{services.map((item, index) => <Banner key={index} title="svc" />)}`)

	res := h.parse(t, out, pagePath, footerRegistry())
	require.Len(t, res.ComponentTree, 2)
	assert.Equal(t, model.KindRepeater, res.ComponentTree[1].Kind)
	got := res.ComponentTree[1].RepeatedComponent
	require.NotNil(t, got)
	assert.Equal(t, model.KindStandard, got.Kind)
	assert.Equal(t, "Banner", got.ComponentName)
	assert.Equal(t, tree[1].RepeatedComponent.Props, got.Props)
}

func TestWrite_MarkupShapes(t *testing.T) {
	h := newHarness(t)
	source := "import Banner from \"../components/Banner\";\n\nexport default () => <Banner />;\n"

	t.Run("empty tree", func(t *testing.T) {
		out := h.write(t, source, pagePath, Input{}, nil)
		assert.Equal(t, "export default () => null;\n", out)
	})

	t.Run("several roots", func(t *testing.T) {
		tree := []model.ComponentState{
			{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "header"},
			{Kind: model.KindBuiltIn, UUID: "b", ComponentName: "footer"},
		}
		out := h.write(t, source, pagePath, Input{ComponentTree: tree}, nil)
		assert.Equal(t, "export default () => (\n  <>\n    <header />\n    <footer />\n  </>\n);\n", out)
	})
}

func TestWrite_ReturnedRepeater(t *testing.T) {
	h := newHarness(t)
	template := "export default function Page() {\n  return null;\n}\n"

	t.Run("self-closing template", func(t *testing.T) {
		tree := []model.ComponentState{
			{Kind: model.KindRepeater, UUID: "rep", ListExpression: "items",
				RepeatedComponent: &model.ComponentState{Kind: model.KindBuiltIn, ComponentName: "div",
					Props: model.PropValues{"title": model.StringLiteral("x")}}},
		}
		out := h.write(t, template, pagePath, Input{ComponentTree: tree}, nil)
		assert.Equal(t, "export default function Page() {\n  return items.map((item, index) => <div key={index} title=\"x\" />);\n}\n", out)

		res := h.parse(t, out, pagePath, nil)
		require.Len(t, res.ComponentTree, 1)
		assert.True(t, model.StructurallyEqual(tree, res.ComponentTree), "got %+v", res.ComponentTree)

		assert.Equal(t, out, h.write(t, out, pagePath, Input{ComponentTree: res.ComponentTree}, nil))
	})

	t.Run("template with children", func(t *testing.T) {
		tree := []model.ComponentState{
			{Kind: model.KindRepeater, UUID: "rep", ListExpression: "items",
				RepeatedComponent: &model.ComponentState{Kind: model.KindBuiltIn, ComponentName: "li"}},
			{Kind: model.KindBuiltIn, UUID: "s", ParentUUID: "rep", ComponentName: "span"},
		}
		out := h.write(t, template, pagePath, Input{ComponentTree: tree}, nil)
		assert.Equal(t, `export default function Page() {
  return items.map((item, index) => (
    <li key={index}>
      <span />
    </li>
  ));
}
`, out)

		res := h.parse(t, out, pagePath, nil)
		assert.True(t, model.StructurallyEqual(tree, res.ComponentTree), "got %+v", res.ComponentTree)
	})
}

func TestWrite_BareReturn(t *testing.T) {
	h := newHarness(t)
	source := "export default function Page() {\n  return;\n}\n"
	tree := []model.ComponentState{{Kind: model.KindFragment, UUID: "f"}}

	out := h.write(t, source, pagePath, Input{ComponentTree: tree}, nil)
	assert.Equal(t, "export default function Page() {\n  return (\n    <></>\n  );\n}\n", out)
}

func TestWrite_AddsPropsParameterForReferences(t *testing.T) {
	h := newHarness(t)
	source := "export default function Page() {\n  return null;\n}\n"
	tree := []model.ComponentState{
		{Kind: model.KindBuiltIn, UUID: "h", ComponentName: "h1",
			Props: model.PropValues{"title": model.PropRef("title")}},
	}

	out := h.write(t, source, pagePath, Input{ComponentTree: tree}, nil)
	assert.Contains(t, out, "export default function Page(props) {")
	assert.Contains(t, out, "<h1 title={props.title} />")
}

func TestWrite_Errors(t *testing.T) {
	h := newHarness(t)

	testCases := []struct {
		name   string
		source string
		tree   []model.ComponentState
		kind   ErrorKind
	}{
		{
			name:   "dangling parent",
			source: bannerPage,
			tree:   []model.ComponentState{{Kind: model.KindBuiltIn, UUID: "a", ParentUUID: "ghost", ComponentName: "div"}},
			kind:   ComponentTreeInconsistent,
		},
		{
			name:   "fragment with props",
			source: bannerPage,
			tree: []model.ComponentState{{Kind: model.KindFragment, UUID: "a",
				Props: model.PropValues{"key": model.StringLiteral("x")}}},
			kind: ComponentTreeInconsistent,
		},
		{
			name:   "unknown component",
			source: bannerPage,
			tree:   []model.ComponentState{{Kind: model.KindStandard, UUID: "a", ComponentName: "Gallery"}},
			kind:   UnresolvedImport,
		},
		{
			name:   "no default export",
			source: "export function Page() {\n  return null;\n}\n",
			kind:   IncompatibleSource,
		},
		{
			name:   "no return statement",
			source: "export default function Page() {\n  const x = 1;\n}\n",
			kind:   IncompatibleSource,
		},
		{
			name:   "reference without props parameter",
			source: "export default function Page({ title }) {\n  return null;\n}\n",
			tree: []model.ComponentState{{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "h1",
				Props: model.PropValues{"title": model.PropRef("title")}}},
			kind: InvalidPropValue,
		},
		{
			name:   "mistyped literal",
			source: bannerPage,
			tree: []model.ComponentState{{Kind: model.KindBuiltIn, UUID: "a", ComponentName: "h1",
				Props: model.PropValues{"n": {Kind: model.ValueKindLiteral, ValueType: model.TypeNumber, Value: "3"}}}},
			kind: InvalidPropValue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := h.writer.Write([]byte(tc.source), pagePath, Input{ComponentTree: tc.tree}, nil)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestWrite_UnresolvedImportWrapsResolutionError(t *testing.T) {
	h := newHarness(t)
	tree := []model.ComponentState{{Kind: model.KindStandard, UUID: "g", ComponentName: "Gallery"}}

	_, err := h.writer.Write([]byte(bannerPage), pagePath, Input{ComponentTree: tree}, footerRegistry())
	var re *resolver.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Gallery", re.Name)
	assert.Equal(t, "g", re.UUID)
}

func TestWrite_KeepsImportsRenderedOutsideMarkup(t *testing.T) {
	h := newHarness(t)
	source := `import Banner from "../components/Banner";
import Footer from "../components/Footer";

function Layout() {
  return <Footer />;
}

export default function IndexPage() {
  return <Banner />;
}
`
	out := h.write(t, source, pagePath, Input{}, footerRegistry())
	assert.NotContains(t, out, "import Banner")
	assert.Contains(t, out, `import Footer from "../components/Footer";`)
}

func TestAttributeValues(t *testing.T) {
	p := &valuePrinter{propsParam: "props", quote: '"'}
	testCases := []struct {
		name  string
		value model.PropValue
		want  string
	}{
		{"plain string", model.StringLiteral("hello"), `a="hello"`},
		{"string with quote", model.StringLiteral(`a "b"`), `a={"a \"b\""}`},
		{"string with newline", model.StringLiteral("x\ny"), `a={"x\ny"}`},
		{"string with ampersand", model.StringLiteral("a & b"), `a={"a & b"}`},
		{"integer", model.NumberLiteral(5), `a={5}`},
		{"fraction", model.NumberLiteral(0.25), `a={0.25}`},
		{"boolean", model.BoolLiteral(true), `a={true}`},
		{"empty object", model.PropValue{Kind: model.ValueKindLiteral, ValueType: model.TypeObject, Value: model.PropValues{}}, `a={{}}`},
		{"list", model.List(model.NumberLiteral(1), model.PropRef("x")), `a={[1, props.x]}`},
		{"prop ref", model.PropRef("title"), `a={props.title}`},
		{"expression", model.Expression("items.length > 0", model.TypeBoolean), `a={items.length > 0}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.attribute("a", tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAttributeValues_SingleQuotedFile(t *testing.T) {
	p := &valuePrinter{propsParam: "props", quote: '"', attrQuote: '\''}

	got, err := p.attribute("a", model.StringLiteral(`say "hi"`))
	require.NoError(t, err)
	assert.Equal(t, `a='say "hi"'`, got)

	got, err = p.attribute("a", model.StringLiteral("it's"))
	require.NoError(t, err)
	assert.Equal(t, `a={"it's"}`, got)
}

func TestQuoteJS(t *testing.T) {
	assert.Equal(t, `"it's"`, quoteJS("it's", '"'))
	assert.Equal(t, `'it\'s'`, quoteJS("it's", '\''))
	assert.Equal(t, `"tab\there\\"`, quoteJS("tab\there\\", '"'))
	assert.Equal(t, `"\x01"`, quoteJS("\x01", 0))
}

func TestEditsApply(t *testing.T) {
	src := []byte("0123456789")
	var es edits
	es.insert(0, "a", "")
	es.insert(0, "b", "")
	es.remove(sourcefile.Span{Start: 2, End: 4}, "")
	es.insert(2, "X", "")
	es.replace(sourcefile.Span{Start: 8, End: 10}, "Z", "")

	out, err := es.apply(src)
	require.NoError(t, err)
	assert.Equal(t, "ab01X4567Z", string(out))

	var overlapping edits
	overlapping.replace(sourcefile.Span{Start: 1, End: 5}, "", "")
	overlapping.replace(sourcefile.Span{Start: 3, End: 7}, "", "")
	_, err = overlapping.apply(src)
	assert.Error(t, err)
}
