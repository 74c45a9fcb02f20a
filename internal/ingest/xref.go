package ingest

import "codedoc/internal/chunker"

// CrossReferenceIndex maps definition names to the chunks defining them.
// Repeated names accumulate locations.
type CrossReferenceIndex struct {
	functions map[string][]chunker.Key
	classes   map[string][]chunker.Key
}

// NewCrossReferenceIndex creates an empty index.
func NewCrossReferenceIndex() *CrossReferenceIndex {
	return &CrossReferenceIndex{
		functions: make(map[string][]chunker.Key),
		classes:   make(map[string][]chunker.Key),
	}
}

// Add registers a function or class chunk. Other chunks are ignored.
func (x *CrossReferenceIndex) Add(c chunker.Chunk) {
	if c.Name == "" {
		return
	}
	switch c.ChunkType {
	case chunker.TypeFunction:
		x.functions[c.Name] = append(x.functions[c.Name], c.Key())
	case chunker.TypeClass:
		x.classes[c.Name] = append(x.classes[c.Name], c.Key())
	}
}

// Functions returns the locations of functions with the given name.
func (x *CrossReferenceIndex) Functions(name string) []chunker.Key {
	return x.functions[name]
}

// Classes returns the locations of classes with the given name.
func (x *CrossReferenceIndex) Classes(name string) []chunker.Key {
	return x.classes[name]
}

// Len reports how many distinct function and class names are indexed.
func (x *CrossReferenceIndex) Len() (functions, classes int) {
	return len(x.functions), len(x.classes)
}
