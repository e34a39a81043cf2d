package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cowrite/internal/completion"
	"github.com/csheth/cowrite/internal/draft"
)

type fakeSubmitter struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []completion.Request
}

func (f *fakeSubmitter) Complete(ctx context.Context, payload completion.Request) (completion.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, payload)
	if f.err != nil {
		return completion.Response{}, f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	if idx < 0 {
		return completion.Response{}, nil
	}
	return completion.Response{Completion: f.responses[idx]}, nil
}

func (f *fakeSubmitter) Endpoint() string { return "http://fake/completion" }

func newTestModel(t *testing.T, client Submitter) *model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	teaModel, ok := New(Config{Client: client, Logger: logger}).(*model)
	if !ok {
		t.Fatalf("expected *model, got %T", teaModel)
	}
	teaModel.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return teaModel
}

var cmdType = reflect.TypeOf(tea.Cmd(nil))

// drain runs cmd and every command nested in batch or sequence messages,
// returning the leaf messages in order.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, inner := range batch {
			out = append(out, drain(inner)...)
		}
		return out
	}
	value := reflect.ValueOf(msg)
	if value.Kind() == reflect.Slice && value.Type().Elem() == cmdType {
		var out []tea.Msg
		for i := 0; i < value.Len(); i++ {
			inner := value.Index(i).Interface().(tea.Cmd)
			out = append(out, drain(inner)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func envelopes(msgs []tea.Msg) []jobResultEnvelope {
	var out []jobResultEnvelope
	for _, msg := range msgs {
		if env, ok := msg.(jobResultEnvelope); ok {
			out = append(out, env)
		}
	}
	return out
}

func TestSubmitDraftJobPostsSectionsInOrder(t *testing.T) {
	fake := &fakeSubmitter{responses: []string{"# Revised"}}
	form := draft.NewForm().WithTitle("Essay")
	form = form.EditSection(0, draft.FieldTitle, "Intro")
	form = form.EditSection(0, draft.FieldContent, "Hook")
	form = form.AddSection()
	form = form.EditSection(1, draft.FieldTitle, "Body")
	form = form.EditSection(1, draft.FieldContent, "Argument")

	msg, err := submitDraftJob(fake, completion.NewRequest(form))(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := msg.(submissionResultMsg)
	if !ok {
		t.Fatalf("expected submissionResultMsg, got %T", msg)
	}
	if result.completion != "# Revised" {
		t.Fatalf("completion mismatch: %q", result.completion)
	}
	if len(fake.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(fake.requests))
	}
	got := fake.requests[0]
	if got.Title != "Essay" {
		t.Fatalf("title mismatch: %q", got.Title)
	}
	want := []draft.Section{{Title: "Intro", Content: "Hook"}, {Title: "Body", Content: "Argument"}}
	if !reflect.DeepEqual(got.Sections, want) {
		t.Fatalf("sections mismatch: %#v", got.Sections)
	}
}

func TestSubmitDraftJobCarriesError(t *testing.T) {
	fake := &fakeSubmitter{err: errors.New("connection refused")}
	msg, err := submitDraftJob(fake, completion.Request{})(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	result := msg.(submissionResultMsg)
	if result.err == nil || result.completion != "" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestJobBusAnnouncesThenReports(t *testing.T) {
	bus := newJobBus(nil)
	msgs := drain(bus.Start(jobKindSubmit, func(context.Context) (tea.Msg, error) {
		return "payload", errors.New("boom")
	}))
	if len(msgs) != 2 {
		t.Fatalf("expected signal and result, got %d messages", len(msgs))
	}
	signal, ok := msgs[0].(jobSignalMsg)
	if !ok || signal.Snapshot.Status != jobStatusRunning {
		t.Fatalf("first message should announce the job, got %#v", msgs[0])
	}
	env, ok := msgs[1].(jobResultEnvelope)
	if !ok {
		t.Fatalf("second message should be the result, got %T", msgs[1])
	}
	if env.Snapshot.ID != signal.Snapshot.ID || env.Snapshot.ID != "submit-1" {
		t.Fatalf("job id mismatch: %q vs %q", env.Snapshot.ID, signal.Snapshot.ID)
	}
	if env.Snapshot.Status != jobStatusFailed || env.Snapshot.Err != "boom" {
		t.Fatalf("failure not recorded: %#v", env.Snapshot)
	}
	if env.Payload != "payload" {
		t.Fatalf("payload lost: %#v", env.Payload)
	}
}
