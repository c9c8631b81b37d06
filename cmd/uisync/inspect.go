package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gnana997/uisync/pkg/catalog"
	"github.com/gnana997/uisync/pkg/model"
)

const maxWidth = 80

// printEntryHuman prints a human-readable entry summary.
func printEntryHuman(w io.Writer, e *catalog.Entry, root string) {
	fmt.Fprintf(w, "%s  [%s]\n", e.Name, e.Kind)
	if e.Error != "" {
		fmt.Fprintln(w)
		printWrapped(w, "Does not parse: "+e.Error, 2, maxWidth)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "File")
	rel, err := filepath.Rel(root, e.ImportPath)
	if err != nil {
		rel = e.ImportPath
	}
	fmt.Fprintf(w, "  %s\n", rel)
	if e.Metadata.AcceptsChildren {
		fmt.Fprintln(w, "  accepts children")
	}

	s := catalog.Summarize(e)
	fmt.Fprintln(w)
	printPropsSection(w, "Props", s.Props, e.Metadata.InitialProps)

	if e.Kind == model.FileKindModule {
		fmt.Fprintln(w)
		printTree(w, e.Metadata.ComponentTree)
	}
}

// printPropsSection renders the props table with dynamic column widths.
func printPropsSection(w io.Writer, title string, props []catalog.Prop, initial model.PropValues) {
	if len(props) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	// Compute column widths.
	nameW := len("NAME")
	typeW := len("TYPE")
	initW := len("INITIAL")
	for _, p := range props {
		if len(p.Name) > nameW {
			nameW = len(p.Name)
		}
		if len(propType(p)) > typeW {
			typeW = len(propType(p))
		}
		if n := len(initialText(initial, p.Name)); n > initW {
			initW = n
		}
	}

	// Header row.
	sepLen := nameW + typeW + 5 + initW + 4 // NAME + TYPE + "REQ" + INITIAL + spacing
	fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %-*s\n", nameW, "NAME", typeW, "TYPE", "REQ", initW, "INITIAL")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", sepLen))

	// Prop rows.
	for _, p := range props {
		req := "no"
		if p.Required {
			req = "yes"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %-*s\n",
			nameW, p.Name, typeW, propType(p), req, initW, initialText(initial, p.Name))

		if p.Doc != "" {
			fmt.Fprintf(w, "  %s  %s\n", strings.Repeat(" ", nameW), p.Doc)
		}
		if len(p.Unions) > 0 {
			allowed := strings.Join(p.Unions, " | ")
			label := strings.Repeat(" ", nameW)
			fmt.Fprintf(w, "  %s  allowed: %s\n", label, wrapAllowed(allowed, nameW+12))
		}
	}
}

func propType(p catalog.Prop) string {
	if p.RawType != "" {
		return p.RawType
	}
	return string(p.Type)
}

// initialText prints the initial value of a prop, or a dash.
func initialText(initial model.PropValues, name string) string {
	v, ok := initial[name]
	if !ok {
		return "—"
	}
	if v.Kind == model.ValueKindExpression || v.Kind == model.ValueKindPropRef {
		return fmt.Sprint(v.Value)
	}
	if s, ok := v.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v.Value)
}

// printTree prints a module's component tree as an indented outline.
func printTree(w io.Writer, tree []model.ComponentState) {
	if len(tree) == 0 {
		fmt.Fprintln(w, "Tree  (empty)")
		return
	}
	fmt.Fprintln(w, "Tree")
	children := model.ChildrenByParent(tree)
	var walk func(c model.ComponentState, depth int)
	walk = func(c model.ComponentState, depth int) {
		fmt.Fprintf(w, "  %s%s\n", strings.Repeat("  ", depth), nodeLabel(c))
		for _, kid := range children[c.UUID] {
			walk(kid, depth+1)
		}
	}
	for _, root := range model.Roots(tree) {
		walk(root, 0)
	}
}

func nodeLabel(c model.ComponentState) string {
	switch c.Kind {
	case model.KindFragment:
		return "<>"
	case model.KindRepeater:
		return fmt.Sprintf("%s.map → <%s>", c.ListExpression, c.Template().ComponentName)
	}
	return "<" + c.ComponentName + ">"
}

// printSummaryTable lists entries one per line.
func printSummaryTable(w io.Writer, entries []catalog.Summary) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no components found")
		return
	}
	nameW := len("NAME")
	for _, s := range entries {
		if len(s.Name) > nameW {
			nameW = len(s.Name)
		}
	}
	fmt.Fprintf(w, "%-*s  %-9s  %5s  %s\n", nameW, "NAME", "KIND", "PROPS", "STATUS")
	for _, s := range entries {
		status := "ok"
		if s.Error != "" {
			status = "parse error"
		}
		fmt.Fprintf(w, "%-*s  %-9s  %5d  %s\n", nameW, s.Name, s.Kind, len(s.Props), status)
	}
}

// wrapAllowed wraps the allowed values string if it exceeds maxWidth.
func wrapAllowed(allowed string, indent int) string {
	if indent+len(allowed) <= maxWidth {
		return allowed
	}
	parts := strings.Split(allowed, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3 // " | "
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	words := strings.Fields(text)
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != prefix {
			fmt.Fprintln(w, line)
			line = prefix + word
		} else {
			if line == prefix {
				line += word
			} else {
				line += " " + word
			}
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
