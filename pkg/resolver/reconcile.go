package resolver

import (
	"slices"
	"sort"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

// Action is what happens to an existing import declaration.
type Action string

const (
	// Keep leaves the declaration byte-identical.
	Keep Action = "keep"
	// Remove deletes the declaration.
	Remove Action = "remove"
	// Rewrite replaces the declaration with Decision.Text.
	Rewrite Action = "rewrite"
)

// Decision is the verdict on one existing declaration.
type Decision struct {
	Import sourcefile.Import
	Action Action
	// Text is the replacement declaration for Rewrite.
	Text string
}

// Addition is a declaration to create. Stylesheet additions carry only
// Specifier.
type Addition struct {
	Specifier string
	Default   string
	Named     []string
}

// Plan is the outcome of Reconcile: one decision per existing declaration
// in file order and the declarations to add.
type Plan struct {
	Decisions []Decision
	Additions []Addition
}

// Changed reports whether applying the plan alters the file.
func (p Plan) Changed() bool {
	if len(p.Additions) > 0 {
		return true
	}
	for _, d := range p.Decisions {
		if d.Action != Keep {
			return true
		}
	}
	return false
}

// Reconcile decides how the declarations in existing must change so the file
// imports exactly want plus the stylesheets in css.
//
// A binding is managed when want or registry knows its name; unmanaged
// bindings (framework imports, helpers) are always kept. A wanted name that
// some declaration already binds is satisfied by it whatever its syntax.
// Stylesheet imports not listed in css are removed.
func Reconcile(existing []sourcefile.Import, want *ImportSet, css []string, registry model.Registry) Plan {
	if want == nil {
		want = newImportSet()
	}
	satisfied := make(map[string]bool)
	cssPresent := make(map[string]bool)

	plan := Plan{Decisions: make([]Decision, 0, len(existing))}
	for _, imp := range existing {
		d := Decision{Import: imp, Action: Keep}
		switch {
		case imp.TypeOnly:
		case imp.SideEffect():
			if imp.IsStylesheet() {
				if slices.Contains(css, imp.Source) && !cssPresent[imp.Source] {
					cssPresent[imp.Source] = true
				} else {
					d.Action = Remove
				}
			}
		default:
			d = reconcileBindings(imp, want, registry, satisfied)
		}
		plan.Decisions = append(plan.Decisions, d)
	}

	plan.Additions = additions(want, satisfied)
	for _, sheet := range css {
		if !cssPresent[sheet] {
			cssPresent[sheet] = true
			plan.Additions = append(plan.Additions, Addition{Specifier: sheet})
		}
	}
	return plan
}

func reconcileBindings(imp sourcefile.Import, want *ImportSet, registry model.Registry, satisfied map[string]bool) Decision {
	managed := func(local string) bool {
		if _, ok := want.Specifier(local); ok {
			return true
		}
		_, ok := model.Lookup(registry, local)
		return ok
	}
	wanted := func(local string) bool {
		_, ok := want.Specifier(local)
		return ok
	}

	kept := imp
	kept.Named = nil
	dropped := 0

	if imp.Default != "" {
		switch {
		case wanted(imp.Default):
			satisfied[imp.Default] = true
		case managed(imp.Default):
			kept.Default = ""
			dropped++
		}
	}
	for _, n := range imp.Named {
		local := n.Local()
		switch {
		case n.TypeOnly:
		case wanted(local):
			satisfied[local] = true
		case managed(local):
			dropped++
			continue
		}
		kept.Named = append(kept.Named, n)
	}

	switch {
	case dropped == 0:
		return Decision{Import: imp, Action: Keep}
	case kept.Default == "" && kept.Namespace == "" && len(kept.Named) == 0:
		return Decision{Import: imp, Action: Remove}
	}
	return Decision{Import: imp, Action: Rewrite, Text: FormatImport(kept)}
}

// additions groups the unsatisfied names of want by specifier, ordered by
// the first name of each group.
func additions(want *ImportSet, satisfied map[string]bool) []Addition {
	bySpec := make(map[string]*Addition)
	var order []string
	for _, name := range want.Names() {
		if satisfied[name] {
			continue
		}
		spec, _ := want.Specifier(name)
		add, ok := bySpec[spec]
		if !ok {
			add = &Addition{Specifier: spec}
			bySpec[spec] = add
			order = append(order, spec)
		}
		if want.Named[name] || add.Default != "" {
			add.Named = append(add.Named, name)
		} else {
			add.Default = name
		}
	}

	out := make([]Addition, 0, len(order))
	for _, spec := range order {
		out = append(out, *bySpec[spec])
	}
	return out
}

// FormatImport prints imp as a declaration using its quote and semicolon
// style.
func FormatImport(imp sourcefile.Import) string {
	var clause []string
	if imp.Default != "" {
		clause = append(clause, imp.Default)
	}
	if imp.Namespace != "" {
		clause = append(clause, "* as "+imp.Namespace)
	}
	if len(imp.Named) > 0 {
		names := make([]string, 0, len(imp.Named))
		for _, n := range imp.Named {
			s := n.Name
			if n.Alias != "" {
				s += " as " + n.Alias
			}
			if n.TypeOnly {
				s = "type " + s
			}
			names = append(names, s)
		}
		clause = append(clause, "{ "+strings.Join(names, ", ")+" }")
	}

	quote := imp.Quote
	if quote == 0 {
		quote = '"'
	}
	var b strings.Builder
	b.WriteString("import ")
	if imp.TypeOnly {
		b.WriteString("type ")
	}
	if len(clause) > 0 {
		b.WriteString(strings.Join(clause, ", "))
		b.WriteString(" from ")
	}
	b.WriteByte(quote)
	b.WriteString(imp.Source)
	b.WriteByte(quote)
	if imp.Semicolon {
		b.WriteByte(';')
	}
	return b.String()
}

// FormatAddition prints an addition in the given style.
func FormatAddition(add Addition, style sourcefile.Style) string {
	imp := sourcefile.Import{
		Source:    add.Specifier,
		Quote:     style.Quote,
		Default:   add.Default,
		Semicolon: style.Semicolons,
	}
	named := slices.Clone(add.Named)
	sort.Strings(named)
	for _, n := range named {
		imp.Named = append(imp.Named, sourcefile.ImportName{Name: n})
	}
	return FormatImport(imp)
}
