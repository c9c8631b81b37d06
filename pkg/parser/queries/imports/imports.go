// Package imports holds the tree-sitter query that locates top-level import
// declarations of a component file.
package imports

// Query matches every top-level import statement and its source string.
// It compiles against the TSX, TypeScript and JavaScript grammars.
//
// Captures:
//   - @import.statement - the whole import_statement node
//   - @import.source - the quoted module specifier
const Query = `
(program
  (import_statement
    source: (string) @import.source
  ) @import.statement
)
`
