package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool names.
const (
	ToolListComponents = "list_components"
	ToolParseFile      = "parse_file"
	ToolUpdateFile     = "update_file"
	ToolResolveImports = "resolve_imports"
	ToolValidateTree   = "validate_tree"
)

func listComponentsTool() mcp.Tool {
	return mcp.NewTool(ToolListComponents,
		mcp.WithDescription("List registered components and modules with their props. Filter by kind and/or keyword."),
		mcp.WithString("kind",
			mcp.Description("Only list entries of this kind"),
			mcp.Enum("component", "module"),
		),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive match against names, prop names and prop docs"),
		),
	)
}

func parseFileTool() mcp.Tool {
	return mcp.NewTool(ToolParseFile,
		mcp.WithDescription("Read a component file as a flat component tree with its stylesheet imports and file metadata."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the .tsx file"),
		),
		mcp.WithString("source",
			mcp.Description("Parse this text instead of the file's current contents"),
		),
	)
}

func updateFileTool() mcp.Tool {
	return mcp.NewTool(ToolUpdateFile,
		mcp.WithDescription("Rewrite a component file so it renders the given component tree. Code outside the markup, imports and prop declarations is kept."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the .tsx file; it is created when missing"),
		),
		mcp.WithArray("componentTree",
			mcp.Required(),
			mcp.Description("Flat list of component states, parents before children"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithArray("cssImports",
			mcp.Description("Stylesheet imports the file should have"),
			mcp.WithStringItems(),
		),
		mcp.WithObject("fileMetadata",
			mcp.Description("Prop shape and initial props to declare in the file"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Return the rewritten source without writing it"),
		),
	)
}

func resolveImportsTool() mcp.Tool {
	return mcp.NewTool(ToolResolveImports,
		mcp.WithDescription("Resolve the import specifiers a component tree needs when rendered from the given file."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file the imports are written into"),
		),
		mcp.WithArray("componentTree",
			mcp.Required(),
			mcp.Description("Flat list of component states"),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)
}

func validateTreeTool() mcp.Tool {
	return mcp.NewTool(ToolValidateTree,
		mcp.WithDescription("Check a component tree against the registry: unknown components, undeclared props, missing required props and values outside a prop's allowed set."),
		mcp.WithArray("componentTree",
			mcp.Required(),
			mcp.Description("Flat list of component states"),
			mcp.Items(map[string]any{"type": "object"}),
		),
	)
}
