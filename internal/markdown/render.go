package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Renderer renders bot replies to styled terminal output.
// Rendered entries are cached by transcript index until the width changes or Reset is called.
type Renderer struct {
	glamour *glamour.TermRenderer
	width   int
	cache   map[int]string
}

// NewRenderer creates a new markdown renderer wrapping at width.
func NewRenderer(width int) (*Renderer, error) {
	if width < 1 {
		width = 1
	}
	gr, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		glamour: gr,
		width:   width,
		cache:   map[int]string{},
	}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int { return r.width }

// Render renders content. The index is used for caching; use -1 to bypass the cache.
func (r *Renderer) Render(index int, content string) string {
	if index >= 0 {
		if md, ok := r.cache[index]; ok {
			return md
		}
	}

	blocks := ParseBlocks(content)
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, r.renderBlock(block.md()))
	}
	result := strings.Join(parts, "\n")

	if index >= 0 {
		r.cache[index] = result
	}
	return result
}

// Reset drops every cached rendering. Call it when the transcript is replaced.
func (r *Renderer) Reset() {
	r.cache = map[int]string{}
}

// SetWidth updates the renderer width, recreating internals if needed.
func (r *Renderer) SetWidth(width int) error {
	if r.width == width {
		return nil
	}
	newRenderer, err := NewRenderer(width)
	if err != nil {
		return err
	}
	*r = *newRenderer
	return nil
}

func (r *Renderer) renderBlock(content string) string {
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// customStyle returns a modified glamour style for cleaner output.
func customStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	style.CodeBlock.Margin = &zero
	style.CodeBlock.Indent = &zero
	style.CodeBlock.Prefix = ""
	style.CodeBlock.BlockPrefix = ""

	style.Code.Margin = &zero
	style.Code.Indent = &zero
	style.Code.Prefix = ""
	style.Code.Suffix = ""

	style.Paragraph.BlockPrefix = ""
	style.Paragraph.BlockSuffix = ""

	return style
}
