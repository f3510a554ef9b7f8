package markdown

import (
	"regexp"
	"strings"
)

// Group 1 is the optional language, group 2 the code.
var codeBlockRegexp = regexp.MustCompile("(?sm)^```([a-zA-Z0-9_+-]*)\\n(.*?)^```")

// Block is a segment of a bot reply.
type Block interface {
	md() string
	Content() string
}

// TextBlock is prose.
type TextBlock struct {
	Text string
}

func (b *TextBlock) md() string { return b.Text }

// Content returns the text.
func (b *TextBlock) Content() string { return b.Text }

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Language string
	Code     string
}

func (b *CodeBlock) md() string {
	return "```" + b.Language + "\n" + b.Code + "\n```"
}

// Content returns the code without fences.
func (b *CodeBlock) Content() string { return b.Code }

// ParseBlocks splits markdown content into text and fenced code segments.
func ParseBlocks(content string) []Block {
	var result []Block
	lastEnd := 0
	for _, match := range codeBlockRegexp.FindAllStringSubmatchIndex(content, -1) {
		fullStart, fullEnd := match[0], match[1]
		if fullStart > lastEnd {
			result = append(result, &TextBlock{Text: content[lastEnd:fullStart]})
		}
		language := content[match[2]:match[3]]
		if language == "" {
			language = "md"
		}
		code := content[match[4]:match[5]]
		result = append(result, &CodeBlock{
			Language: language,
			Code:     strings.ReplaceAll(strings.Trim(code, "\n"), "\t", "  "), // tabs break glamour alignment.
		})
		lastEnd = fullEnd
	}
	if lastEnd < len(content) {
		result = append(result, &TextBlock{Text: content[lastEnd:]})
	}
	return result
}

// LastCodeBlock returns the content of the last fenced code block in content.
func LastCodeBlock(content string) (string, bool) {
	blocks := ParseBlocks(content)
	for i := len(blocks) - 1; i >= 0; i-- {
		if code, ok := blocks[i].(*CodeBlock); ok {
			return code.Code, true
		}
	}
	return "", false
}
