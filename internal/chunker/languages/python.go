package languages

import (
	"strings"

	"codedoc/internal/chunker"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func RegisterPython(r *chunker.Registry) {
	register(r, "python", &chunker.LanguageSpec{
		Language: python.GetLanguage(),
		Definitions: `
			(function_definition name: (identifier) @name) @function
			(class_definition name: (identifier) @name) @class
			(decorated_definition definition: (function_definition name: (identifier) @name)) @function
			(decorated_definition definition: (class_definition name: (identifier) @name)) @class
		`,
		Calls: `
			(call function: (identifier) @callee)
			(call function: (attribute attribute: (identifier) @callee))
		`,
		Extensions: []string{"py", "pyi"},
		Imports:    pythonImports,
		Docstring:  pythonDocstring,
	})
}

func pythonImports(n *sitter.Node, src []byte) []string {
	switch n.Type() {
	case "import_statement":
		var names []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "dotted_name":
				names = append(names, child.Content(src))
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					names = append(names, name.Content(src))
				}
			}
		}
		return names
	case "import_from_statement":
		mod := n.ChildByFieldName("module_name")
		if mod == nil {
			return nil
		}
		if mod.Type() == "relative_import" {
			// "from . import x" names no module.
			for i := 0; i < int(mod.NamedChildCount()); i++ {
				if child := mod.NamedChild(i); child.Type() == "dotted_name" {
					return []string{child.Content(src)}
				}
			}
			return nil
		}
		return []string{mod.Content(src)}
	}
	return nil
}

func pythonDocstring(root *sitter.Node, src []byte) (string, int, int) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() == "comment" {
			continue
		}
		if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
			return "", 0, 0
		}
		str := n.NamedChild(0)
		if str.Type() != "string" {
			return "", 0, 0
		}
		doc := cleandoc(unquote(str.Content(src)))
		if strings.TrimSpace(doc) == "" {
			return "", 0, 0
		}
		start, end := chunker.LineSpan(str)
		return doc, start, end
	}
	return "", 0, 0
}
