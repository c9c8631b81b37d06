// Package tags holds the tree-sitter query that lists the element names a
// file renders. Only grammars with JSX support can compile it.
package tags

// Query captures the name of every opening and self-closing element.
// Fragments (<>) have no name and are not matched.
//
// Captures:
//   - @tag.name - identifier or member expression naming the element
const Query = `
(jsx_opening_element
  name: (_) @tag.name
)

(jsx_self_closing_element
  name: (_) @tag.name
)
`
