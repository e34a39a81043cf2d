package draft

// Placeholder is rendered until the first completion arrives.
const Placeholder = "Get started with collaborative writing with Claude!"

// State is the form state store backing the editor. It is owned by a single
// event loop and is not safe for concurrent use.
type State struct {
	form       Form
	Loading    bool
	Error      string
	Completion string
	inFlight   int
}

// NewState returns an idle store with one blank section.
func NewState() *State {
	return &State{form: NewForm()}
}

// Form returns the current snapshot.
func (s *State) Form() Form {
	return s.form
}

func (s *State) SetTitle(title string) {
	s.form = s.form.WithTitle(title)
}

func (s *State) AddSection() {
	s.form = s.form.AddSection()
}

func (s *State) EditSection(index int, field Field, value string) {
	s.form = s.form.EditSection(index, field, value)
}

// InFlight reports how many submissions are awaiting a response.
func (s *State) InFlight() int {
	return s.inFlight
}

// BeginSubmit validates the form. On failure the validation message is stored
// and nothing else changes. On success the store enters the loading state and
// the snapshot to send is returned.
func (s *State) BeginSubmit() (Form, error) {
	if err := s.form.Validate(); err != nil {
		s.Error = err.Error()
		return Form{}, err
	}
	s.Error = ""
	s.inFlight++
	s.Loading = true
	return s.form, nil
}

// Succeed records a completion. Responses apply in arrival order, so with
// overlapping submissions the last one to resolve wins.
func (s *State) Succeed(text string) {
	s.Completion = text
	s.settle()
}

// Fail settles a submission without touching Error or Completion. Transport
// failures are logged by the caller, never shown.
func (s *State) Fail() {
	s.settle()
}

func (s *State) settle() {
	if s.inFlight > 0 {
		s.inFlight--
	}
	s.Loading = s.inFlight > 0
}

// Display returns the markdown that the preview pane should render.
func (s *State) Display() string {
	if !s.Loading && s.Completion != "" {
		return s.Completion
	}
	return Placeholder
}
