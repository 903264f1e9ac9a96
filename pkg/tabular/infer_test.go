package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/treetab/pkg/document"
)

func columnByName(t *testing.T, columns []Column, name string) Column {
	t.Helper()
	for _, c := range columns {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no column named %q in %v", name, columnNames(columns))
	return Column{}
}

func columnNames(columns []Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func TestInferSchema_ScalarLeaves(t *testing.T) {
	doc := parseDoc(t, `<employees>
		<employee><name>Alice</name><age>30</age><active>true</active></employee>
		<employee><name>Bob</name><age>forty</age><active>false</active></employee>
	</employees>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "VARCHAR", columnByName(t, columns, "name").Type.String())
	// "30" and "forty" split the vote, so age stays VARCHAR
	assert.Equal(t, "VARCHAR", columnByName(t, columns, "age").Type.String())
	assert.Equal(t, "BOOLEAN", columnByName(t, columns, "active").Type.String())
	assert.Equal(t, "RECORD<name VARCHAR, age VARCHAR, active BOOLEAN>",
		columnByName(t, columns, "employee").Type.String())
}

func TestInferSchema_ListFromRepeatedChild(t *testing.T) {
	doc := parseDoc(t, `<db><rec><tags><tag>go</tag><tag>xml</tag><tag>data</tag></tags></rec></db>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "LIST<VARCHAR>", columnByName(t, columns, "tags").Type.String())
	assert.Equal(t, "RECORD<tags LIST<VARCHAR>>", columnByName(t, columns, "rec").Type.String())
}

func TestInferSchema_MixedChildrenFallToFragment(t *testing.T) {
	doc := parseDoc(t, `<root><row><a>x</a><a>y</a><b>z</b></row><row><a>p</a><a>q</a><b>r</b></row></root>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	// Two a's and one b per instance: neither list nor record
	assert.Equal(t, KindFragment, columnByName(t, columns, "row").Type.Kind)
}

func TestInferSchema_AttributedContainerFallsToDocument(t *testing.T) {
	doc := parseDoc(t, `<root><box id="9"><c>x</c><c>y</c><d>z</d></box></root>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, KindDocument, columnByName(t, columns, "box").Type.Kind)
	// The attribute still surfaces as its own column
	boxID := columnByName(t, columns, "box_id")
	assert.True(t, boxID.IsAttribute)
	assert.Equal(t, "box", boxID.AttrOwner)
	assert.Equal(t, "id", boxID.AttrName)
}

func TestInferSchema_OutlierPruning(t *testing.T) {
	doc := parseDoc(t, `<r>
		<a>1</a><a>2</a><a>3</a><a>4</a><a>5</a>
		<a>6</a><a>7</a><a>8</a><a>9</a><a>10</a>
		<b>rare</b>
	</r>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	// b occurs once in eleven elements, below the 10% threshold
	assert.Equal(t, []string{"a"}, columnNames(columns))
}

func TestInferSchema_DepthZeroIsSingleDocumentColumn(t *testing.T) {
	doc := parseDoc(t, `<rss><channel><title>Feed</title></channel></rss>`)

	opts := DefaultOptions()
	opts.DepthLimit = 0
	columns, err := InferSchema(doc, opts)
	require.NoError(t, err)

	require.Len(t, columns, 1)
	assert.Equal(t, "rss", columns[0].Name)
	assert.Equal(t, KindDocument, columns[0].Type.Kind)
}

func TestInferSchema_DepthRefinesMonotonically(t *testing.T) {
	fixture := `<rss><channel><title>Feed</title><items>
		<item><name>A</name><link>u1</link></item>
		<item><name>B</name><link>u2</link></item>
	</items></channel></rss>`

	opts := DefaultOptions()
	opts.DepthLimit = 2
	shallow, err := InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)

	// items is opaque at depth 2: its children were never modeled
	assert.Equal(t, KindFragment, columnByName(t, shallow, "items").Type.Kind)
	assert.Equal(t, "VARCHAR", columnByName(t, shallow, "title").Type.String())

	opts.DepthLimit = 4
	deep, err := InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)

	assert.Equal(t, "LIST<RECORD<name VARCHAR, link VARCHAR>>",
		columnByName(t, deep, "items").Type.String())

	// Deeper analysis only adds columns, it never loses them
	for _, name := range columnNames(shallow) {
		columnByName(t, deep, name)
	}
}

func TestInferSchema_AttributeModes(t *testing.T) {
	fixture := `<users>
		<user id="1" role="admin"><name>A</name></user>
		<user id="2" role="dev"><name>B</name></user>
	</users>`

	opts := DefaultOptions()
	columns, err := InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "user_id", "user_role", "name"}, columnNames(columns))

	opts.Attributes = AttributePrefixed
	opts.AttributePrefix = "attr_"
	columns, err = InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "attr_user_id", "attr_user_role", "name"}, columnNames(columns))

	opts.Attributes = AttributeMap
	columns, err = InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "user_attributes", "name"}, columnNames(columns))
	attrs := columnByName(t, columns, "user_attributes")
	assert.Equal(t, "RECORD<id VARCHAR, role VARCHAR>", attrs.Type.String())

	opts.Attributes = AttributeDiscard
	columns, err = InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "name"}, columnNames(columns))
}

func TestInferSchema_ForceList(t *testing.T) {
	fixture := `<r><rec><tag>one</tag></rec><rec><tag>two</tag></rec></r>`

	columns, err := InferSchema(parseDoc(t, fixture), DefaultOptions())
	require.NoError(t, err)
	// A single observed child normally types as a record
	assert.Equal(t, "RECORD<tag VARCHAR>", columnByName(t, columns, "rec").Type.String())

	opts := DefaultOptions()
	opts.ForceList = []string{"rec"}
	columns, err = InferSchema(parseDoc(t, fixture), opts)
	require.NoError(t, err)
	assert.Equal(t, "LIST<VARCHAR>", columnByName(t, columns, "rec").Type.String())
}

func TestInferSchema_RootSelector(t *testing.T) {
	doc := parseDoc(t, `<catalog><meta><v>1</v></meta><products>
		<product><sku>A1</sku></product>
		<product><sku>B2</sku></product>
	</products></catalog>`)

	opts := DefaultOptions()
	opts.RootSelector = "//products"
	columns, err := InferSchema(doc, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"product", "sku"}, columnNames(columns))
}

func TestInferSchema_InvalidSelector(t *testing.T) {
	doc := parseDoc(t, `<r><a>1</a></r>`)

	opts := DefaultOptions()
	opts.RootSelector = "///["
	_, err := InferSchema(doc, opts)
	assert.Error(t, err)
}

func TestInferSchema_EmptyRootFallsToAnchorColumn(t *testing.T) {
	doc := parseDoc(t, `<empty/>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, columns, 1)
	assert.Equal(t, "empty", columns[0].Name)
	assert.Equal(t, KindDocument, columns[0].Type.Kind)
}

func TestInferSchema_NoRootFallback(t *testing.T) {
	columns, err := InferSchema(&document.Document{}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"filename", "content"}, columnNames(columns))
}

func TestInferSchema_Deterministic(t *testing.T) {
	fixture := `<feed>
		<entry><title>A</title><tags><tag>x</tag><tag>y</tag></tags></entry>
		<entry><title>B</title><tags><tag>z</tag><tag>w</tag></tags></entry>
	</feed>`

	first, err := InferSchema(parseDoc(t, fixture), DefaultOptions())
	require.NoError(t, err)
	second, err := InferSchema(parseDoc(t, fixture), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestInferSchema_SelfNestedElements(t *testing.T) {
	// part containing part must not recurse forever
	doc := parseDoc(t, `<bom><part><part><part>bolt</part></part></part></bom>`)

	columns, err := InferSchema(doc, DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, columns)
}
