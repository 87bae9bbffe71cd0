package llm

import "context"

// Completion is the text returned by a single completion call. Text may be
// empty when the provider answered without usable content.
type Completion struct {
	Text     string
	Provider string
	Model    string
}

type Completer interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}
