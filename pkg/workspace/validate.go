package workspace

import (
	"fmt"
	"sort"
	"strings"
)

const maxPageNameLength = 255

const forbiddenPageNameChars = `\/?%*:|"<>`

// ValidationError lists every rule a page name breaks.
type ValidationError struct {
	Name     string
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid page name %q: %s", e.Name, strings.Join(e.Messages, "; "))
}

// ValidatePageName checks name against the page naming rules. existing holds
// the names already in use.
func ValidatePageName(name string, existing map[string]bool) error {
	var msgs []string
	if name == "" {
		msgs = append(msgs, "a page name is required")
	}
	if bad := forbiddenIn(name); bad != "" {
		msgs = append(msgs, "page name cannot contain the characters: "+bad)
	}
	if strings.HasSuffix(name, ".") {
		msgs = append(msgs, "page name cannot end with a period")
	}
	if len([]rune(name)) > maxPageNameLength {
		msgs = append(msgs, fmt.Sprintf("page name must be %d characters or less", maxPageNameLength))
	}
	if existing[name] {
		msgs = append(msgs, fmt.Sprintf("page name %q is already used", name))
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Name: name, Messages: msgs}
}

// forbiddenIn returns the distinct forbidden characters of name in order of
// first appearance.
func forbiddenIn(name string) string {
	seen := make(map[rune]bool)
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbiddenPageNameChars, r) && !seen[r] {
			seen[r] = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
