package llm

import (
	"context"
	"fmt"
)

// Placeholder answers without calling any service. It lets the extension UI
// run locally before credentials are configured.
type Placeholder struct{}

var _ Completer = Placeholder{}

func (Placeholder) Complete(ctx context.Context, prompt string) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	return Completion{
		Text: fmt.Sprintf("[placeholder] Received a prompt of %d characters. "+
			"Configure VIZCHAT_AI_PROVIDER with gemini or openai to get real answers.", len(prompt)),
		Provider: ProviderPlaceholder,
		Model:    "placeholder",
	}, nil
}
