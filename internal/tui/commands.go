package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/cowrite/internal/completion"
)

// Submitter posts a draft to the completion endpoint.
type Submitter interface {
	Complete(ctx context.Context, payload completion.Request) (completion.Response, error)
	Endpoint() string
}

type submissionResultMsg struct {
	completion string
	err        error
}

func submitDraftJob(client Submitter, payload completion.Request) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		resp, err := client.Complete(ctx, payload)
		if err != nil {
			return submissionResultMsg{err: err}, err
		}
		return submissionResultMsg{completion: resp.Completion}, nil
	}
}
