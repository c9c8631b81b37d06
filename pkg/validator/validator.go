// Package validator checks a component tree against the metadata registry:
// every component must be known, its props declared, its required props set
// and its union props given an allowed value.
package validator

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

// Rule names reported in Violation.Rule.
const (
	RuleUnknownComponent   = "unknown-component"
	RuleKindMismatch       = "kind-mismatch"
	RuleStaleMetadata      = "stale-metadata"
	RuleUnknownProp        = "unknown-prop"
	RuleMissingRequired    = "missing-required-prop"
	RuleInvalidPropValue   = "invalid-prop-value"
	RulePropTypeMismatch   = "prop-type-mismatch"
	RuleUnexpectedChildren = "unexpected-children"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Validator checks component trees against a registry.
type Validator struct {
	registry model.Registry
	logger   *slog.Logger
}

// Result is the outcome of validating one tree.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
	Summary    string      `json:"summary"`
}

// Violation represents a single validation rule violation.
type Violation struct {
	Rule       string `json:"rule"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	NodeUUID   string `json:"nodeUUID,omitempty"`
	Component  string `json:"component,omitempty"`
	Prop       string `json:"prop,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// New creates a Validator. A nil registry knows no components.
func New(registry model.Registry, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{registry: registry, logger: logger}
}

// ValidateTree checks every node of tree. Structural problems (missing
// parents, duplicate UUIDs) are the writer's concern and are not reported.
// A tree is valid when it has no error-level violations.
func (v *Validator) ValidateTree(tree []model.ComponentState) *Result {
	children := model.ChildrenByParent(tree)
	result := &Result{Valid: true}

	for _, node := range tree {
		tpl := node.Template()
		if tpl.Kind != model.KindStandard && tpl.Kind != model.KindModule {
			continue
		}
		result.Violations = append(result.Violations,
			v.checkNode(node.UUID, tpl, len(children[node.UUID]) > 0)...)
	}

	for _, viol := range result.Violations {
		if viol.Severity == SeverityError {
			result.Valid = false
			break
		}
	}
	result.Summary = summarize(result.Violations)
	if len(result.Violations) > 0 {
		v.logger.Debug("component tree has violations",
			"nodes", len(tree),
			"violations", len(result.Violations),
			"valid", result.Valid)
	}
	return result
}

func (v *Validator) checkNode(uuid string, c model.ComponentState, hasChildren bool) []Violation {
	var out []Violation
	report := func(rule, severity, prop, format string, args ...any) *Violation {
		out = append(out, Violation{
			Rule:      rule,
			Severity:  severity,
			NodeUUID:  uuid,
			Component: c.ComponentName,
			Prop:      prop,
			Message:   fmt.Sprintf(format, args...),
		})
		return &out[len(out)-1]
	}

	entry, ok := model.Lookup(v.registry, c.ComponentName)
	if !ok {
		report(RuleUnknownComponent, SeverityError, "",
			"component %s is not in the registry", c.ComponentName)
		return out
	}
	md := entry.Metadata

	isModule := md.Kind == model.FileKindModule
	if isModule != (c.Kind == model.KindModule) {
		report(RuleKindMismatch, SeverityWarning, "",
			"%s is registered as a %s but the node is %s", c.ComponentName, md.Kind, c.Kind)
	}
	if c.MetadataUUID != "" && md.MetadataUUID != "" && c.MetadataUUID != md.MetadataUUID {
		report(RuleStaleMetadata, SeverityWarning, "",
			"%s points at metadata %s, the registry has %s", c.ComponentName, c.MetadataUUID, md.MetadataUUID)
	}

	if hasChildren && !model.CanAcceptChildren(c, &md) {
		report(RuleUnexpectedChildren, SeverityWarning, "",
			"%s does not render children", c.ComponentName)
	}

	if len(md.PropShape) == 0 {
		return out
	}

	for _, name := range sortedKeys(c.Props) {
		meta, declared := md.PropShape[name]
		if !declared {
			report(RuleUnknownProp, SeverityWarning, name,
				"%s declares no prop %q", c.ComponentName, name)
			continue
		}
		value := c.Props[name]
		if value.Kind != model.ValueKindLiteral {
			continue
		}
		if s, isString := value.Value.(string); isString && len(meta.Unions) > 0 {
			if !slices.Contains(meta.Unions, s) {
				viol := report(RuleInvalidPropValue, SeverityError, name,
					"%q is not an allowed value for %s.%s (allowed: %s)",
					s, c.ComponentName, name, strings.Join(meta.Unions, " | "))
				viol.Suggestion = suggestValue(meta, md.InitialProps[name])
			}
			continue
		}
		if meta.Type != "" && meta.Type != model.TypeUnknown && value.ValueType != "" &&
			value.ValueType != meta.Type && len(meta.Unions) == 0 {
			report(RulePropTypeMismatch, SeverityWarning, name,
				"%s.%s is declared %s but set to a %s literal", c.ComponentName, name, meta.Type, value.ValueType)
		}
	}

	for _, name := range sortedKeys(md.PropShape) {
		if !md.PropShape[name].Required {
			continue
		}
		if _, set := c.Props[name]; set {
			continue
		}
		if _, initial := md.InitialProps[name]; initial {
			continue
		}
		report(RuleMissingRequired, SeverityWarning, name,
			"%s requires prop %q", c.ComponentName, name)
	}
	return out
}

// suggestValue prefers the component's initial value when it is allowed,
// then the first union member.
func suggestValue(meta model.PropMetadata, initial model.PropValue) string {
	if s, ok := initial.Value.(string); ok && slices.Contains(meta.Unions, s) {
		return s
	}
	if len(meta.Unions) > 0 {
		return meta.Unions[0]
	}
	return ""
}

func summarize(violations []Violation) string {
	if len(violations) == 0 {
		return "no issues found"
	}
	var errs, warns int
	for _, v := range violations {
		if v.Severity == SeverityError {
			errs++
		} else {
			warns++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
