package languages

import (
	"strings"

	"codedoc/internal/chunker"

	sitter "github.com/smacker/go-tree-sitter"
)

// RegisterAll registers every bundled grammar.
func RegisterAll(r *chunker.Registry) {
	RegisterPython(r)
	RegisterGo(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
}

// Default returns a registry with every bundled grammar registered.
func Default() *chunker.Registry {
	r := chunker.NewRegistry()
	RegisterAll(r)
	return r
}

func register(r *chunker.Registry, name string, spec *chunker.LanguageSpec) {
	r.Register(name, chunker.NewTreeSitterParser(name, spec), spec.Extensions...)
}

// unquote strips string prefixes and matching quote delimiters.
func unquote(s string) string {
	s = strings.TrimLeft(s, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`, "`"} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// cleandoc trims a documentation string: blank leading and trailing lines
// are removed and common indentation after the first line is stripped.
func cleandoc(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "        "), "\n")
	indent := -1
	for _, l := range lines[1:] {
		trimmed := strings.TrimLeft(l, " ")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " ")
	if indent > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= indent {
				lines[i] = lines[i][indent:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// commentText strips comment markers from a line or block comment.
func commentText(c string) string {
	if strings.HasPrefix(c, "//") {
		return strings.TrimPrefix(strings.TrimPrefix(c, "//"), " ")
	}
	c = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c, "/*"), "*"), "*/")
	lines := strings.Split(c, "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		lines[i] = strings.TrimPrefix(l, " ")
	}
	return cleandoc(strings.Join(lines, "\n"))
}

// leadingBlockDoc returns the first top-level node when it is a /** */ comment.
func leadingBlockDoc(root *sitter.Node, src []byte) (string, int, int) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		if n.Type() == "hash_bang_line" {
			continue
		}
		if n.Type() != "comment" {
			return "", 0, 0
		}
		text := n.Content(src)
		if !strings.HasPrefix(text, "/**") {
			return "", 0, 0
		}
		start, end := chunker.LineSpan(n)
		return commentText(text), start, end
	}
	return "", 0, 0
}
