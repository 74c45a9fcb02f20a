package languages

import (
	"strings"

	"codedoc/internal/chunker"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func RegisterGo(r *chunker.Registry) {
	register(r, "go", &chunker.LanguageSpec{
		Language: golang.GetLanguage(),
		Definitions: `
			(function_declaration name: (identifier) @name) @function
			(method_declaration name: (field_identifier) @name) @function
			(type_declaration (type_spec name: (type_identifier) @name) @class)
		`,
		Calls: `
			(call_expression function: (identifier) @callee)
			(call_expression function: (selector_expression field: (field_identifier) @callee))
		`,
		Groups:     []string{"type_declaration"},
		Extensions: []string{"go"},
		Imports:    goImports,
		Docstring:  goDocstring,
	})
}

func goImports(n *sitter.Node, src []byte) []string {
	if n.Type() != "import_declaration" {
		return nil
	}
	var paths []string
	var visit func(*sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "import_spec" {
			if p := n.ChildByFieldName("path"); p != nil {
				paths = append(paths, unquote(p.Content(src)))
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(n)
	return paths
}

// goDocstring returns the comment block directly above the package clause.
func goDocstring(root *sitter.Node, src []byte) (string, int, int) {
	var block []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "comment":
			if len(block) > 0 {
				_, prevEnd := chunker.LineSpan(block[len(block)-1])
				if start, _ := chunker.LineSpan(n); start != prevEnd+1 {
					block = block[:0]
				}
			}
			block = append(block, n)
		case "package_clause":
			if len(block) == 0 {
				return "", 0, 0
			}
			_, end := chunker.LineSpan(block[len(block)-1])
			if pkgStart, _ := chunker.LineSpan(n); pkgStart != end+1 {
				return "", 0, 0
			}
			parts := make([]string, 0, len(block))
			for _, c := range block {
				parts = append(parts, commentText(c.Content(src)))
			}
			start, _ := chunker.LineSpan(block[0])
			return strings.Join(parts, "\n"), start, end
		default:
			return "", 0, 0
		}
	}
	return "", 0, 0
}
