// Package markdown turns completion text into styled terminal output.
//
// The source is parsed with goldmark and the AST is walked block by block.
// Inline content is flattened into styled runs, then each block is wrapped to
// the requested width with reflow. Raw HTML is printed as-is; nothing is
// sanitized.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const minWidth = 20

var (
	h1Style         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	h2Style         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	h3Style         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	emphasisStyle   = lipgloss.NewStyle().Italic(true)
	strongStyle     = lipgloss.NewStyle().Bold(true)
	codeSpanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffd166"))
	codeBlockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Underline(true)
	quoteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	ruleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#56526e"))
	listMarkerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8c00"))
)

var parser = goldmark.New().Parser()

// Render converts markdown into wrapped, styled text no wider than width.
func Render(src string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))
	r := &renderer{source: source}
	blocks := r.blocks(doc, width)
	return strings.Join(blocks, "\n\n")
}

type renderer struct {
	source []byte
}

func (r *renderer) blocks(parent ast.Node, width int) []string {
	var out []string
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if block := r.block(child, width); block != "" {
			out = append(out, block)
		}
	}
	return out
}

func (r *renderer) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Heading:
		return headingStyle(n.Level).Render(wordwrap.String(r.inline(n), width))
	case *ast.Paragraph, *ast.TextBlock:
		return wordwrap.String(r.inline(n), width)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return indent.String(codeBlockStyle.Render(r.lines(n)), 2)
	case *ast.Blockquote:
		inner := strings.Join(r.blocks(n, width-2), "\n\n")
		return prefixLines(quoteStyle.Render(inner), "│ ")
	case *ast.List:
		return r.list(n, width)
	case *ast.ThematicBreak:
		return ruleStyle.Render(strings.Repeat("─", width))
	case *ast.HTMLBlock:
		return strings.TrimRight(r.lines(n), "\n")
	default:
		return strings.Join(r.blocks(n, width), "\n\n")
	}
}

func (r *renderer) list(list *ast.List, width int) string {
	var items []string
	number := list.Start
	if number == 0 {
		number = 1
	}
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		marker := "•"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", number)
			number++
		}
		pad := len([]rune(marker)) + 1
		body := strings.Join(r.blocks(child, width-pad), "\n")
		body = indent.String(body, uint(pad))
		if len(body) >= pad {
			body = listMarkerStyle.Render(marker) + " " + body[pad:]
		}
		items = append(items, body)
	}
	sep := "\n"
	if !list.IsTight {
		sep = "\n\n"
	}
	return strings.Join(items, sep)
}

func (r *renderer) inline(parent ast.Node) string {
	var b strings.Builder
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			b.Write(r.text(n))
			if n.HardLineBreak() {
				b.WriteRune('\n')
			} else if n.SoftLineBreak() {
				b.WriteRune(' ')
			}
		case *ast.String:
			b.Write(n.Value)
		case *ast.CodeSpan:
			b.WriteString(codeSpanStyle.Render(r.inline(n)))
		case *ast.Emphasis:
			if n.Level >= 2 {
				b.WriteString(strongStyle.Render(r.inline(n)))
			} else {
				b.WriteString(emphasisStyle.Render(r.inline(n)))
			}
		case *ast.Link:
			label := r.inline(n)
			dest := string(n.Destination)
			if label == "" || label == dest {
				b.WriteString(linkStyle.Render(dest))
			} else {
				b.WriteString(label + " (" + linkStyle.Render(dest) + ")")
			}
		case *ast.AutoLink:
			b.WriteString(linkStyle.Render(string(n.URL(r.source))))
		case *ast.Image:
			b.WriteString("[image: " + r.inline(n) + "]")
		case *ast.RawHTML:
			segments := n.Segments
			for i := 0; i < segments.Len(); i++ {
				segment := segments.At(i)
				b.Write(segment.Value(r.source))
			}
		default:
			b.WriteString(r.inline(n))
		}
	}
	return b.String()
}

// text resolves backslash escapes and character references. Code span
// contents are raw and pass through untouched.
func (r *renderer) text(n *ast.Text) []byte {
	value := n.Segment.Value(r.source)
	if n.IsRaw() {
		return value
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}

func (r *renderer) lines(node ast.Node) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(r.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func headingStyle(level int) lipgloss.Style {
	switch level {
	case 1:
		return h1Style
	case 2:
		return h2Style
	default:
		return h3Style
	}
}

func prefixLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
