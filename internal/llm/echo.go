package llm

import (
	"context"
	"strings"

	"github.com/csheth/cowrite/internal/draft"
)

// Echo renders the draft back as markdown without calling a model. Handy for
// local runs and tests.
type Echo struct{}

func (Echo) Name() string {
	return "Echo"
}

func (Echo) Revise(_ context.Context, title string, sections []draft.Section) (string, error) {
	var sb strings.Builder
	if title = strings.TrimSpace(title); title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	for _, section := range sections {
		sb.WriteString("## ")
		sb.WriteString(strings.TrimSpace(section.Title))
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(section.Content))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
