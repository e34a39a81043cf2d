package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cowrite/internal/completion"
	"github.com/csheth/cowrite/internal/draft"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Client Submitter
	Logger *slog.Logger
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	titleInput := textinput.New()
	titleInput.Placeholder = "Article title"
	titleInput.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	formView := viewport.New(minColumnWidth, 20)
	preview := viewport.New(minColumnWidth, 20)
	preview.MouseWheelEnabled = true

	m := &model{
		config:       config,
		state:        draft.NewState(),
		layout:       newPageLayout(),
		titleInput:   titleInput,
		spinner:      spin,
		formView:     formView,
		preview:      preview,
		jobs:         newJobBus(config.Logger),
		activeJobs:   map[string]jobSnapshot{},
		previewDirty: true,
	}
	m.sections = []sectionEditor{newSectionEditor(0)}
	m.applyLayout()
	return m
}

type sectionEditor struct {
	title   textinput.Model
	content textarea.Model
}

func newSectionEditor(index int) sectionEditor {
	title := textinput.New()
	title.Placeholder = fmt.Sprintf("Section %d title", index+1)

	content := textarea.New()
	content.Placeholder = "What should this section say?"
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.SetHeight(contentRows)
	return sectionEditor{title: title, content: content}
}

type model struct {
	config Config
	state  *draft.State
	layout pageLayout

	titleInput textinput.Model
	sections   []sectionEditor
	focus      int

	spinner  spinner.Model
	formView viewport.Model
	preview  viewport.Model

	jobs       *jobBus
	activeJobs map[string]jobSnapshot
	lastJob    *jobSnapshot

	previewDirty bool
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state.Loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.applyLayout()
		return m, nil
	case jobSignalMsg:
		m.activeJobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.activeJobs, msg.Snapshot.ID)
		snapshot := msg.Snapshot
		m.lastJob = &snapshot
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case submissionResultMsg:
		m.handleSubmissionResult(msg)
		return m, nil
	}
	// Cursor blinks and anything else addressed to the inputs.
	return m, m.updateFocusedField(msg)
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.setFocus(m.focus + 1)
	case "shift+tab":
		return m, m.setFocus(m.focus - 1)
	case "ctrl+n":
		return m, m.addSection()
	case "ctrl+s":
		return m, m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(key)
		return m, cmd
	}
	return m, m.updateFocusedField(key)
}

func (m *model) fieldCount() int {
	return 1 + len(m.sections)*2
}

func (m *model) setFocus(focus int) tea.Cmd {
	count := m.fieldCount()
	focus = ((focus % count) + count) % count
	m.focus = focus
	m.titleInput.Blur()
	for i := range m.sections {
		m.sections[i].title.Blur()
		m.sections[i].content.Blur()
	}
	slot := slotFor(focus)
	var cmd tea.Cmd
	switch {
	case slot.article:
		cmd = m.titleInput.Focus()
	case slot.content:
		cmd = m.sections[slot.section].content.Focus()
	default:
		cmd = m.sections[slot.section].title.Focus()
	}
	m.scrollFormToFocus()
	return cmd
}

func (m *model) addSection() tea.Cmd {
	m.state.AddSection()
	editor := newSectionEditor(len(m.sections))
	editor.title.Width = m.layout.inputWidth()
	editor.content.SetWidth(m.layout.inputWidth())
	m.sections = append(m.sections, editor)
	return m.setFocus(focusFor(len(m.sections)-1, false))
}

// updateFocusedField forwards msg to the focused input and copies any change
// into the state store.
func (m *model) updateFocusedField(msg tea.Msg) tea.Cmd {
	slot := slotFor(m.focus)
	var cmd tea.Cmd
	switch {
	case slot.article:
		before := m.titleInput.Value()
		m.titleInput, cmd = m.titleInput.Update(msg)
		if value := m.titleInput.Value(); value != before {
			m.state.SetTitle(value)
		}
	case slot.content:
		editor := &m.sections[slot.section]
		before := editor.content.Value()
		editor.content, cmd = editor.content.Update(msg)
		if value := editor.content.Value(); value != before {
			m.state.EditSection(slot.section, draft.FieldContent, value)
		}
	default:
		editor := &m.sections[slot.section]
		before := editor.title.Value()
		editor.title, cmd = editor.title.Update(msg)
		if value := editor.title.Value(); value != before {
			m.state.EditSection(slot.section, draft.FieldTitle, value)
		}
	}
	return cmd
}

// submit validates and, when the form is complete, starts a submission job.
// Submitting again while a request is pending is allowed.
func (m *model) submit() tea.Cmd {
	form, err := m.state.BeginSubmit()
	if err != nil {
		return nil
	}
	m.markPreviewDirty()
	if m.config.Client == nil {
		m.config.Logger.Error("completion request failed", "error", "no completion client configured")
		m.state.Fail()
		return nil
	}
	payload := completion.NewRequest(form)
	job := m.jobs.Start(jobKindSubmit, submitDraftJob(m.config.Client, payload))
	return tea.Batch(m.spinner.Tick, job)
}

func (m *model) handleSubmissionResult(msg submissionResultMsg) {
	if msg.err != nil {
		m.config.Logger.Error("completion request failed",
			"endpoint", m.config.Client.Endpoint(),
			"error", msg.err,
		)
		m.state.Fail()
	} else {
		m.config.Logger.Info("completion received", "chars", len(msg.completion))
		m.state.Succeed(msg.completion)
	}
	m.markPreviewDirty()
}

func (m *model) markPreviewDirty() {
	m.previewDirty = true
}

func (m *model) applyLayout() {
	width := m.layout.inputWidth()
	m.titleInput.Width = width
	for i := range m.sections {
		m.sections[i].title.Width = width
		m.sections[i].content.SetWidth(width)
	}
	m.formView.Width = m.layout.formWidth - 2
	m.formView.Height = m.layout.bodyHeight
	m.preview.Width = m.layout.previewInnerWidth()
	m.preview.Height = m.layout.previewInnerHeight()
	m.markPreviewDirty()
}
