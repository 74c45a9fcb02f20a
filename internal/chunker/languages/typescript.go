package languages

import (
	"codedoc/internal/chunker"

	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

const tsDefinitions = `
	(function_declaration name: (identifier) @name) @function
	(class_declaration name: (type_identifier) @name) @class
	(abstract_class_declaration name: (type_identifier) @name) @class
	(interface_declaration name: (type_identifier) @name) @class
	(export_statement (function_declaration name: (identifier) @name)) @function
	(export_statement (class_declaration name: (type_identifier) @name)) @class
	(export_statement (abstract_class_declaration name: (type_identifier) @name)) @class
	(export_statement (interface_declaration name: (type_identifier) @name)) @class
	(lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function))) @function
	(export_statement (lexical_declaration (variable_declarator name: (identifier) @name value: (arrow_function)))) @function
`

func RegisterTypeScript(r *chunker.Registry) {
	register(r, "typescript", &chunker.LanguageSpec{
		Language:    typescript.GetLanguage(),
		Definitions: tsDefinitions,
		Calls:       jsCalls,
		Extensions:  []string{"ts", "mts", "cts"},
		Imports:     jsImports,
		Docstring:   leadingBlockDoc,
	})
	register(r, "tsx", &chunker.LanguageSpec{
		Language:    tsx.GetLanguage(),
		Definitions: tsDefinitions,
		Calls:       jsCalls,
		Extensions:  []string{"tsx"},
		Imports:     jsImports,
		Docstring:   leadingBlockDoc,
	})
}
