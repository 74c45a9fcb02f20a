package languages

import (
	"codedoc/internal/chunker"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

const jsCalls = `
	(call_expression function: (identifier) @callee)
	(call_expression function: (member_expression property: (property_identifier) @callee))
	(new_expression constructor: (identifier) @callee)
`

func RegisterJavaScript(r *chunker.Registry) {
	register(r, "javascript", &chunker.LanguageSpec{
		Language: javascript.GetLanguage(),
		Definitions: `
			(function_declaration name: (identifier) @name) @function
			(generator_function_declaration name: (identifier) @name) @function
			(class_declaration name: (identifier) @name) @class
			(export_statement (function_declaration name: (identifier) @name)) @function
			(export_statement (class_declaration name: (identifier) @name)) @class
			(lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @function
			(export_statement (lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function)))) @function
		`,
		Calls:      jsCalls,
		Extensions: []string{"js", "jsx", "mjs", "cjs"},
		Imports:    jsImports,
		Docstring:  leadingBlockDoc,
	})
}

// jsImports handles import statements and re-exports with a source.
func jsImports(n *sitter.Node, src []byte) []string {
	switch n.Type() {
	case "import_statement", "export_statement":
		if s := n.ChildByFieldName("source"); s != nil {
			return []string{unquote(s.Content(src))}
		}
	}
	return nil
}
