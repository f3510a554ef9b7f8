package markdown

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	content := "Here is the snippet:\n```go\nfmt.Println(\"hi\")\n```\nand a table:\n```\na | b\n```\n"
	got := ParseBlocks(content)
	want := []Block{
		&TextBlock{Text: "Here is the snippet:\n"},
		&CodeBlock{Language: "go", Code: "fmt.Println(\"hi\")"},
		&TextBlock{Text: "\nand a table:\n"},
		&CodeBlock{Language: "md", Code: "a | b"},
		&TextBlock{Text: "\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseBlocks() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocksPlainText(t *testing.T) {
	assert.Empty(t, ParseBlocks(""))
	blocks := ParseBlocks("just prose")
	require.Len(t, blocks, 1)
	assert.Equal(t, "just prose", blocks[0].Content())
}

func TestLastCodeBlock(t *testing.T) {
	code, ok := LastCodeBlock("```sh\nls\n```\ntext\n```sh\npwd\n```")
	assert.True(t, ok)
	assert.Equal(t, "pwd", code)

	_, ok = LastCodeBlock("no code here")
	assert.False(t, ok)
}

func TestRendererCaches(t *testing.T) {
	r, err := NewRenderer(40)
	require.NoError(t, err)

	first := r.Render(0, "**bold** answer")
	assert.Contains(t, first, "bold")
	assert.Equal(t, first, r.Render(0, "different content"), "index 0 is cached")
	assert.NotEqual(t, first, r.Render(-1, "different content"))

	r.Reset()
	assert.Contains(t, r.Render(0, "different content"), "different")
}

func TestRendererSetWidth(t *testing.T) {
	r, err := NewRenderer(40)
	require.NoError(t, err)
	r.Render(0, "cached")

	require.NoError(t, r.SetWidth(20))
	assert.Equal(t, 20, r.Width())
	out := r.Render(0, "after resize")
	assert.True(t, strings.Contains(out, "after"), "resizing drops the cache")
}
