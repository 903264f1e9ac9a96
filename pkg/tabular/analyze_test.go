package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/treetab/pkg/document"
)

func parseDoc(t *testing.T, s string) *document.Document {
	t.Helper()
	doc, err := document.ParseString(s, document.ParseOptions{})
	require.NoError(t, err)
	return doc
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", cleanText("  hello \n\t world  "))
	assert.Equal(t, "", cleanText(" \n "))
	assert.Equal(t, "one", cleanText("one"))
}

func TestAnalyzeStructure_CountsAndSamples(t *testing.T) {
	doc := parseDoc(t, `<items><item id="1"><name>first</name></item><item id="2"><name>second</name></item></items>`)

	shapes, names := analyzeStructure(doc.Root, DefaultOptions())

	require.Contains(t, shapes, "item")
	require.Contains(t, shapes, "name")
	assert.Equal(t, []string{"item", "name"}, names)

	item := shapes["item"]
	assert.Equal(t, 2, item.count)
	assert.False(t, item.hasText)
	assert.True(t, item.hasChildren)
	assert.Equal(t, 2, item.attrCounts["id"])
	assert.Equal(t, []string{"id"}, item.attrOrder)

	name := shapes["name"]
	assert.Equal(t, 2, name.count)
	assert.True(t, name.hasText)
	assert.Equal(t, []string{"first", "second"}, name.samples)
}

func TestAnalyzeStructure_OrderedByCount(t *testing.T) {
	doc := parseDoc(t, `<r><rare>x</rare><common>1</common><common>2</common><common>3</common></r>`)

	_, names := analyzeStructure(doc.Root, DefaultOptions())
	assert.Equal(t, []string{"common", "rare"}, names)
}

func TestAnalyzeStructure_ArrayContainer(t *testing.T) {
	doc := parseDoc(t, `<r><tags><tag>a</tag><tag>b</tag></tags></r>`)

	shapes, _ := analyzeStructure(doc.Root, DefaultOptions())

	tags := shapes["tags"]
	assert.True(t, tags.isArrayContainer())
	assert.False(t, tags.isRecordContainer())
	assert.Equal(t, 2, tags.maxPerInstance["tag"])
}

func TestAnalyzeStructure_RecordContainer(t *testing.T) {
	doc := parseDoc(t, `<r><person><name>A</name><age>30</age></person><person><name>B</name></person></r>`)

	shapes, _ := analyzeStructure(doc.Root, DefaultOptions())

	person := shapes["person"]
	assert.True(t, person.isRecordContainer())
	assert.False(t, person.isArrayContainer())
	// age absent in the second instance still counts as a record field
	assert.Equal(t, 1, person.maxPerInstance["age"])
}

func TestAnalyzeStructure_MixedIsNeither(t *testing.T) {
	doc := parseDoc(t, `<r><row><a>1</a><a>2</a><b>3</b></row></r>`)

	shapes, _ := analyzeStructure(doc.Root, DefaultOptions())

	row := shapes["row"]
	assert.False(t, row.isArrayContainer())
	assert.False(t, row.isRecordContainer())
}

func TestAnalyzeStructure_DepthLimit(t *testing.T) {
	doc := parseDoc(t, `<r><a><b><c>deep</c></b></a></r>`)

	opts := DefaultOptions()
	opts.DepthLimit = 2
	shapes, _ := analyzeStructure(doc.Root, opts)

	require.Contains(t, shapes, "a")
	require.Contains(t, shapes, "b")
	assert.NotContains(t, shapes, "c")

	// Boundary elements stay opaque: children exist but were not modeled
	b := shapes["b"]
	assert.True(t, b.hasChildren)
	assert.Empty(t, b.childOrder)
}

func TestAnalyzeStructure_SampleCap(t *testing.T) {
	doc := parseDoc(t, `<r><v>1</v><v>2</v><v>3</v><v>4</v><v>5</v></r>`)

	opts := DefaultOptions()
	opts.MaxSamples = 3
	shapes, _ := analyzeStructure(doc.Root, opts)

	v := shapes["v"]
	assert.Equal(t, 5, v.count)
	// First-N bias: the cap keeps the earliest samples
	assert.Equal(t, []string{"1", "2", "3"}, v.samples)
}

func TestAnalyzeStructure_MergesAcrossBranches(t *testing.T) {
	doc := parseDoc(t, `<r><x><name>a</name></x><y><name>b</name></y></r>`)

	shapes, _ := analyzeStructure(doc.Root, DefaultOptions())

	name := shapes["name"]
	assert.Equal(t, 2, name.count)
	assert.Equal(t, []string{"a", "b"}, name.samples)
}

func TestShapeFrequency(t *testing.T) {
	s := &shapeRecord{count: 3}
	assert.InDelta(t, 0.3, s.frequency(10), 1e-9)
	assert.Equal(t, 0.0, s.frequency(0))
}
