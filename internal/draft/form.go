package draft

import (
	"errors"
	"fmt"
)

// ErrIncompleteSections is reported when any section lacks a title or content.
var ErrIncompleteSections = errors.New("Please make sure all sections are filled.")

// Section is one titled block of the article being drafted.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Filled reports whether both the title and the content are non-empty.
func (s Section) Filled() bool {
	return s.Title != "" && s.Content != ""
}

// Field selects which half of a Section an edit targets.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// Form is an immutable snapshot of the draft. Edits return a new Form and
// never touch the sections slice of the receiver.
type Form struct {
	Title    string
	sections []Section
}

// NewForm returns a form holding a single blank section.
func NewForm() Form {
	return Form{sections: []Section{{}}}
}

// Len returns the number of sections.
func (f Form) Len() int {
	return len(f.sections)
}

// Section returns the section at index.
func (f Form) Section(index int) Section {
	return f.sections[index]
}

// Sections returns a copy of the sections in display order.
func (f Form) Sections() []Section {
	return append([]Section(nil), f.sections...)
}

// WithTitle returns a copy of f with the article title replaced.
func (f Form) WithTitle(title string) Form {
	f.Title = title
	return f
}

// AddSection appends one blank section.
func (f Form) AddSection() Form {
	next := make([]Section, len(f.sections), len(f.sections)+1)
	copy(next, f.sections)
	f.sections = append(next, Section{})
	return f
}

// EditSection replaces one field of the section at index. An out-of-range
// index or unknown field is a caller bug and panics.
func (f Form) EditSection(index int, field Field, value string) Form {
	if index < 0 || index >= len(f.sections) {
		panic(fmt.Sprintf("draft: section index %d out of range [0,%d)", index, len(f.sections)))
	}
	next := f.Sections()
	switch field {
	case FieldTitle:
		next[index].Title = value
	case FieldContent:
		next[index].Content = value
	default:
		panic(fmt.Sprintf("draft: unknown section field %q", field))
	}
	f.sections = next
	return f
}

// Validate checks that every section has a title and content. The article
// title itself is optional.
func (f Form) Validate() error {
	for _, section := range f.sections {
		if !section.Filled() {
			return ErrIncompleteSections
		}
	}
	return nil
}
