package markdown

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestRenderHeadingDropsMarker(t *testing.T) {
	out := plain(Render("# Intro\n\nA better hook.", 60))
	lines := strings.Split(out, "\n")
	assert.Equal(t, "Intro", strings.TrimSpace(lines[0]))
	assert.NotContains(t, out, "#")
	assert.Contains(t, out, "A better hook.")
}

func TestRenderWrapsParagraphs(t *testing.T) {
	src := strings.Repeat("word ", 40)
	out := plain(Render(src, 30))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 30, "line too wide: %q", line)
	}
}

func TestRenderLists(t *testing.T) {
	out := plain(Render("- alpha\n- beta\n\n3. three\n4. four", 40))
	assert.Contains(t, out, "• alpha")
	assert.Contains(t, out, "• beta")
	assert.Contains(t, out, "3. three")
	assert.Contains(t, out, "4. four")
}

func TestRenderInlineAndBlocks(t *testing.T) {
	src := "Use `go test` and **care**.\n\n" +
		"> quoted line\n\n" +
		"```\nfunc main() {}\n```\n\n" +
		"---\n\n" +
		"See [docs](https://example.com)."
	out := plain(Render(src, 40))
	assert.Contains(t, out, "Use go test and care.")
	assert.Contains(t, out, "│ quoted line")
	assert.Contains(t, out, "  func main() {}")
	assert.Contains(t, out, strings.Repeat("─", 40))
	assert.Contains(t, out, "docs (https://example.com)")
}

func TestRenderKeepsRawHTML(t *testing.T) {
	out := plain(Render("hello <b>world</b>", 40))
	assert.Contains(t, out, "<b>world</b>")
}

func TestRenderClampsWidth(t *testing.T) {
	out := plain(Render("---", 5))
	assert.Equal(t, strings.Repeat("─", minWidth), out)
}

func TestRenderResolvesEscapesAndReferences(t *testing.T) {
	cases := map[string]string{
		`5 \* 3 = 15`:       "5 * 3 = 15",
		`snake\_case`:       "snake_case",
		"Fish &amp; chips":  "Fish & chips",
		"Tom &mdash; Jerry": "Tom — Jerry",
		"caf&#233;":         "café",
	}
	for src, want := range cases {
		assert.Equal(t, want, strings.TrimSpace(plain(Render(src, 60))), "source %q", src)
	}
}

func TestRenderLeavesCodeSpansRaw(t *testing.T) {
	out := plain(Render("Use `a \\* b &amp; c` here", 60))
	assert.Contains(t, out, `a \* b &amp; c`)
}
