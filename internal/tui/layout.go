package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/csheth/cowrite/internal/markdown"
)

type pageLayout struct {
	windowWidth  int
	windowHeight int
	formWidth    int
	previewWidth int
	bodyHeight   int
}

func newPageLayout() pageLayout {
	return pageLayout{
		formWidth:    minColumnWidth,
		previewWidth: minColumnWidth,
		bodyHeight:   20,
	}
}

// Update splits the window into the form column and the preview column.
func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	column := (width - viewportHorizontalPadding) / 2
	if column < minColumnWidth {
		column = minColumnWidth
	}
	l.formWidth = column
	l.previewWidth = column
	const chrome = 6
	l.bodyHeight = height - chrome
	if l.bodyHeight < 8 {
		l.bodyHeight = 8
	}
}

func (l pageLayout) inputWidth() int {
	width := l.formWidth - 4
	if width < 20 {
		width = 20
	}
	return width
}

// The preview panel draws a border, horizontal padding and two header rows.
func (l pageLayout) previewInnerWidth() int {
	width := l.previewWidth - 4
	if width < 20 {
		width = 20
	}
	return width
}

func (l pageLayout) previewInnerHeight() int {
	height := l.bodyHeight - 4
	if height < 3 {
		height = 3
	}
	return height
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

type formContent struct {
	content    string
	fieldLines map[int]int
	fieldRows  map[int]int
}

// buildFormContent renders every input and records the first line of each
// focus slot so the form viewport can follow the cursor.
func (m *model) buildFormContent() formContent {
	cb := &contentBuilder{}
	lines := map[int]int{}
	rows := map[int]int{}

	writeField := func(focus int, label, body string) {
		lines[focus] = cb.Line()
		style := fieldLabelStyle
		if m.focus == focus {
			style = focusedLabelStyle
		}
		cb.WriteString(style.Render(label))
		cb.WriteRune('\n')
		cb.WriteString(body)
		cb.WriteRune('\n')
		rows[focus] = cb.Line() - lines[focus]
	}

	writeField(0, "Article title", m.titleInput.View())
	for i := range m.sections {
		cb.WriteRune('\n')
		cb.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Section %d", i+1)))
		cb.WriteRune('\n')
		writeField(focusFor(i, false), "Title", m.sections[i].title.View())
		writeField(focusFor(i, true), "Content", m.sections[i].content.View())
	}
	return formContent{content: cb.String(), fieldLines: lines, fieldRows: rows}
}

// scrollFormToFocus keeps the focused field inside the form viewport.
func (m *model) scrollFormToFocus() {
	view := m.buildFormContent()
	m.formView.SetContent(view.content)
	top, ok := view.fieldLines[m.focus]
	if !ok {
		return
	}
	bottom := top + view.fieldRows[m.focus]
	switch {
	case top < m.formView.YOffset:
		m.formView.SetYOffset(top)
	case bottom > m.formView.YOffset+m.formView.Height:
		m.formView.SetYOffset(bottom - m.formView.Height)
	}
}

func (m *model) refreshFormView() {
	view := m.buildFormContent()
	offset := m.formView.YOffset
	m.formView.SetContent(view.content)
	m.formView.SetYOffset(offset)
}

func (m *model) refreshPreviewIfDirty() {
	if !m.previewDirty {
		return
	}
	m.preview.SetContent(markdown.Render(m.state.Display(), m.preview.Width))
	m.preview.GotoTop()
	m.previewDirty = false
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	fieldLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	focusedLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	heroTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle    = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	previewBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	formColumnStyle = lipgloss.NewStyle().PaddingRight(2)
	statusBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
)
