package chunker

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// LanguageSpec defines the tree-sitter grammar and queries for a language.
type LanguageSpec struct {
	Language *sitter.Language
	// Definitions is a tree-sitter S-expression query that captures
	// definitions as @function or @class, with an optional @name for the
	// identifier. Only captures spanning a whole top-level node are kept.
	Definitions string
	// Calls captures the called name of every call expression as @callee.
	Calls string
	// Groups are top-level node types whose named children are matched as
	// definitions in their own right, such as a parenthesized declaration.
	Groups     []string
	Extensions []string
	// Imports returns the module names imported by a top-level node.
	Imports func(n *sitter.Node, src []byte) []string
	// Docstring returns the module documentation and its 1-based line span.
	Docstring func(root *sitter.Node, src []byte) (doc string, start, end int)
}

// TreeSitterParser is a SourceParser driven by a LanguageSpec.
type TreeSitterParser struct {
	name string
	spec *LanguageSpec

	once    sync.Once
	defs    *sitter.Query
	calls   *sitter.Query
	initErr error
}

// NewTreeSitterParser creates a parser for the named language.
func NewTreeSitterParser(name string, spec *LanguageSpec) *TreeSitterParser {
	return &TreeSitterParser{name: name, spec: spec}
}

func (p *TreeSitterParser) compile() error {
	p.once.Do(func() {
		var err error
		p.defs, err = sitter.NewQuery([]byte(p.spec.Definitions), p.spec.Language)
		if err != nil {
			p.initErr = fmt.Errorf("compile definition query for %s: %w", p.name, err)
			return
		}
		if p.spec.Calls != "" {
			p.calls, err = sitter.NewQuery([]byte(p.spec.Calls), p.spec.Language)
			if err != nil {
				p.initErr = fmt.Errorf("compile call query for %s: %w", p.name, err)
			}
		}
	})
	return p.initErr
}

// Parse implements SourceParser.
func (p *TreeSitterParser) Parse(ctx context.Context, src []byte) (*Module, error) {
	if err := p.compile(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(p.spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, p.parseError(root)
	}

	mod := &Module{}
	if p.spec.Docstring != nil {
		mod.Docstring, mod.DocStartLine, mod.DocEndLine = p.spec.Docstring(root, src)
	}

	topLevel := make(map[[2]uint32]bool)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		topLevel[[2]uint32{child.StartByte(), child.EndByte()}] = true
		if slices.Contains(p.spec.Groups, child.Type()) {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				member := child.NamedChild(j)
				topLevel[[2]uint32{member.StartByte(), member.EndByte()}] = true
			}
		}
		if p.spec.Imports != nil {
			mod.Imports = append(mod.Imports, p.spec.Imports(child, src)...)
		}
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(p.defs, root)

	var caps []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var c capture
		var node *sitter.Node
		for _, mc := range m.Captures {
			switch capName := p.defs.CaptureNameForId(mc.Index); capName {
			case string(KindFunction), string(KindClass):
				node = mc.Node
				c.kind = NodeKind(capName)
			case "name":
				c.name = mc.Node.Content(src)
			}
		}
		if node == nil || !topLevel[[2]uint32{node.StartByte(), node.EndByte()}] {
			continue
		}
		c.node = node
		c.startByte, c.endByte = node.StartByte(), node.EndByte()
		caps = append(caps, c)
	}

	for _, c := range dedup(caps) {
		start, end := lineSpan(c.node)
		mod.Nodes = append(mod.Nodes, Node{
			Kind:      c.kind,
			Name:      c.name,
			StartLine: start,
			EndLine:   end,
			Calls:     p.collectCalls(c.node, src),
		})
	}
	return mod, nil
}

func (p *TreeSitterParser) collectCalls(n *sitter.Node, src []byte) []string {
	if p.calls == nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(p.calls, n)

	seen := make(map[string]bool)
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, mc := range m.Captures {
			if p.calls.CaptureNameForId(mc.Index) == "callee" {
				seen[mc.Node.Content(src)] = true
			}
		}
	}
	calls := make([]string, 0, len(seen))
	for name := range seen {
		calls = append(calls, name)
	}
	sort.Strings(calls)
	return calls
}

func (p *TreeSitterParser) parseError(root *sitter.Node) *ParseError {
	perr := &ParseError{Language: p.name, Message: "syntax error"}
	if n := firstError(root); n != nil {
		perr.Line = int(n.StartPoint().Row) + 1
		perr.Column = int(n.StartPoint().Column) + 1
		if n.IsMissing() {
			perr.Message = "missing " + n.Type()
		} else {
			perr.Message = "unexpected input"
		}
	}
	return perr
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// lineSpan returns the 1-based inclusive line range of a node. A node that
// ends at column 0 finishes on the previous line.
func lineSpan(n *sitter.Node) (start, end int) {
	sp, ep := n.StartPoint(), n.EndPoint()
	start = int(sp.Row) + 1
	end = int(ep.Row) + 1
	if ep.Column == 0 && ep.Row > sp.Row {
		end = int(ep.Row)
	}
	return start, end
}

// LineSpan is lineSpan for language helpers.
func LineSpan(n *sitter.Node) (start, end int) { return lineSpan(n) }

// dedup removes captures that are fully contained within a larger capture.
func dedup(caps []capture) []capture {
	if len(caps) <= 1 {
		return caps
	}
	sort.Slice(caps, func(i, j int) bool {
		if caps[i].startByte != caps[j].startByte {
			return caps[i].startByte < caps[j].startByte
		}
		return (caps[i].endByte - caps[i].startByte) > (caps[j].endByte - caps[j].startByte)
	})

	var result []capture
	var lastEnd uint32
	for _, c := range caps {
		if len(result) == 0 || c.startByte >= lastEnd {
			result = append(result, c)
			if c.endByte > lastEnd {
				lastEnd = c.endByte
			}
		}
	}
	return result
}

type capture struct {
	name      string
	kind      NodeKind
	node      *sitter.Node
	startByte uint32
	endByte   uint32
}
