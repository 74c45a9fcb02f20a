package chunker

import (
	"context"
	"fmt"
)

// NodeKind classifies a top-level definition.
type NodeKind string

const (
	KindFunction NodeKind = "function"
	KindClass    NodeKind = "class"
)

// Node is a top-level definition found by a SourceParser. Lines are 1-based;
// an EndLine of 0 means the parser could not report where the node ends.
type Node struct {
	Kind      NodeKind
	Name      string
	StartLine int
	EndLine   int
	Calls     []string
}

// Module is the parsed view of a single source file.
type Module struct {
	Docstring    string
	DocStartLine int
	DocEndLine   int
	Imports      []string
	Nodes        []Node
}

// SourceParser turns source text into a Module.
type SourceParser interface {
	Parse(ctx context.Context, src []byte) (*Module, error)
}

// ParseError reports source text the grammar could not parse.
type ParseError struct {
	Language string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error at %d:%d: %s", e.Language, e.Line, e.Column, e.Message)
}
