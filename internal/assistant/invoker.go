package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vizchat/vizchat/internal/llm"
	"github.com/vizchat/vizchat/internal/observability"
)

const FallbackAnswer = "I couldn't generate a response. The model may have blocked the content or the prompt was too vague. Please try rephrasing your question."

// ModelInvocationError means the completion call itself did not complete.
type ModelInvocationError struct {
	Err error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed: %v", e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

type Answer struct {
	Text     string
	Fallback bool
	Provider string
	Model    string
	Duration time.Duration
}

type Invoker struct {
	completer llm.Completer
}

func NewInvoker(completer llm.Completer) *Invoker {
	return &Invoker{completer: completer}
}

// Invoke performs one completion call. Empty or whitespace-only output is
// replaced by FallbackAnswer; call failures are returned as
// *ModelInvocationError and never replaced.
func (i *Invoker) Invoke(ctx context.Context, prompt string) (Answer, error) {
	if i.completer == nil {
		return Answer{}, &ModelInvocationError{Err: fmt.Errorf("no completion service configured")}
	}

	start := time.Now()
	completion, err := i.completer.Complete(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		observability.ObserveModelCall(completion.Provider, "error", elapsed)
		return Answer{}, &ModelInvocationError{Err: err}
	}

	answer := Answer{
		Text:     completion.Text,
		Provider: completion.Provider,
		Model:    completion.Model,
		Duration: elapsed,
	}
	if strings.TrimSpace(answer.Text) == "" {
		answer.Text = FallbackAnswer
		answer.Fallback = true
		observability.ObserveModelCall(completion.Provider, "empty", elapsed)
		return answer, nil
	}
	observability.ObserveModelCall(completion.Provider, "ok", elapsed)
	return answer, nil
}
