package llm

import (
	"strings"

	"github.com/csheth/cowrite/internal/draft"
)

// Prompt is the message pair sent to a chat-style model.
type Prompt struct {
	System string
	User   string
}

const revisionInstructions = "I need your help to collaboratively write an article. The article has a title and several sections. " +
	"I will provide you with the title and the contents of the sections, and I want you to help me improve them. " +
	"Your improvements should focus on enhancing the readability, correcting any grammatical errors, and improving the writing style while keeping the original meaning and intent of the text intact. " +
	"Feel free to expand and develop the writing while maintaining coherence of the overall writing. " +
	"Please also ensure that the content generated is safe and free from harmful contents such as violence, sex, swear words, hate speech, and warmongering. " +
	"Finally, please use markdown to write your revision, so I can render it on my user interface."

// BuildRevisionPrompt lays the sections out in order behind the title.
func BuildRevisionPrompt(title string, sections []draft.Section) Prompt {
	var b strings.Builder
	b.WriteString("Here is the title and the sections for you to revise. The title is ")
	b.WriteString(title)
	for _, section := range sections {
		b.WriteString("; Next section - title: ")
		b.WriteString(section.Title)
		b.WriteString("; section content: ")
		b.WriteString(section.Content)
	}
	return Prompt{
		System: revisionInstructions,
		User:   clipText(b.String(), maxDraftChars),
	}
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
