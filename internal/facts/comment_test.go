package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComment_JSDoc(t *testing.T) {
	t.Parallel()
	c := ParseComment(`/**
 * Opens a file.
 * Second line.
 * @param path where to look
 * @throws {NotFound} when missing
 *   and keeps going
 * @throws
 */`)
	assert.Equal(t, "Opens a file.\nSecond line.", c.Text)
	require.Len(t, c.Tags, 3)
	assert.Equal(t, Tag{Name: "param", Value: "path where to look"}, c.Tags[0])
	assert.Equal(t, Tag{Name: "throws", Type: "NotFound", Value: "when missing and keeps going"}, c.Tags[1])
	assert.Equal(t, Tag{Name: "throws"}, c.Tags[2])
	assert.Len(t, c.TagsNamed("throws"), 2)
}

func TestParseComment_LineComments(t *testing.T) {
	t.Parallel()
	c := ParseComment("// helper\n// @export")
	assert.Equal(t, "helper", c.Text)
	assert.True(t, c.IsTagged("export"))
	assert.False(t, c.IsTagged("deprecated"))
}

func TestIsTagged_Value(t *testing.T) {
	t.Parallel()
	c := ParseComment("/** @visibility public api */")
	assert.True(t, c.IsTagged("visibility", "public"))
	assert.False(t, c.IsTagged("visibility", "internal"))
}

func TestParseComment_Empty(t *testing.T) {
	t.Parallel()
	c := ParseComment("")
	assert.Empty(t, c.Text)
	assert.Empty(t, c.Tags)
}
