package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchema(t *testing.T) {
	columns := []Column{
		{Name: "name", Type: Scalar(KindString)},
		{Name: "age", Type: Scalar(KindInteger)},
		{Name: "score", Type: Scalar(KindDouble)},
		{Name: "joined", Type: Scalar(KindDate)},
		{Name: "tags", Type: ListOf(Scalar(KindString))},
		{Name: "address", Type: RecordOf(Field{Name: "city", Type: Scalar(KindString)})},
	}

	schema := JSONSchema(columns)
	require.Equal(t, "object", schema.Type)

	name, ok := schema.Properties.Get("name")
	require.True(t, ok)
	assert.Equal(t, "string", name.Type)

	age, ok := schema.Properties.Get("age")
	require.True(t, ok)
	assert.Equal(t, "integer", age.Type)

	score, ok := schema.Properties.Get("score")
	require.True(t, ok)
	assert.Equal(t, "number", score.Type)

	joined, ok := schema.Properties.Get("joined")
	require.True(t, ok)
	assert.Equal(t, "string", joined.Type)
	assert.Equal(t, "date", joined.Format)

	tags, ok := schema.Properties.Get("tags")
	require.True(t, ok)
	assert.Equal(t, "array", tags.Type)
	require.NotNil(t, tags.Items)
	assert.Equal(t, "string", tags.Items.Type)

	address, ok := schema.Properties.Get("address")
	require.True(t, ok)
	assert.Equal(t, "object", address.Type)
	city, ok := address.Properties.Get("city")
	require.True(t, ok)
	assert.Equal(t, "string", city.Type)
}

func TestJSONSchema_OpaqueKindsAreStrings(t *testing.T) {
	schema := JSONSchema([]Column{
		{Name: "frag", Type: Scalar(KindFragment)},
		{Name: "doc", Type: Scalar(KindDocument)},
	})

	frag, ok := schema.Properties.Get("frag")
	require.True(t, ok)
	assert.Equal(t, "string", frag.Type)

	docProp, ok := schema.Properties.Get("doc")
	require.True(t, ok)
	assert.Equal(t, "string", docProp.Type)
}
