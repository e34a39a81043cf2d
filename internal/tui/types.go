package tui

const heroTitle = "Write with Claude"

const heroTagline = "Draft the sections, then brainstorm a revision."

const (
	minColumnWidth            = 40
	viewportHorizontalPadding = 4
	contentRows               = 5
)

// Field slots: 0 is the article title, then each section contributes a
// title slot followed by a content slot.
type fieldSlot struct {
	section int
	content bool
	article bool
}

func slotFor(focus int) fieldSlot {
	if focus == 0 {
		return fieldSlot{article: true}
	}
	idx := focus - 1
	return fieldSlot{section: idx / 2, content: idx%2 == 1}
}

func focusFor(section int, content bool) int {
	focus := 1 + section*2
	if content {
		focus++
	}
	return focus
}
