package assistant

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vizchat/vizchat/internal/llm"
	"github.com/vizchat/vizchat/internal/observability"
	"github.com/vizchat/vizchat/internal/tabular"
)

type ChatRequest struct {
	Message string          `json:"message"`
	Tableau json.RawMessage `json:"tableau,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// Service runs the single-pass chat pipeline. It holds no per-request state
// and is safe for concurrent use when its Completer is.
type Service struct {
	invoker *Invoker
	logger  *slog.Logger
}

func NewService(completer llm.Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{invoker: NewInvoker(completer), logger: logger}
}

// Chat returns a non-empty response, or an error when the model call failed.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	traceID := observability.TraceIDFromContext(ctx)

	dataContext := tabular.BuildContext(req.Tableau)
	observability.ObserveContext(string(dataContext.Kind), len(dataContext.Text))
	switch dataContext.Kind {
	case tabular.ContextDegraded:
		s.logger.WarnContext(ctx, "tableau payload could not be rendered",
			slog.String("trace_id", traceID),
			slog.Any("error", dataContext.Err),
		)
	case tabular.ContextData:
		s.logger.DebugContext(ctx, "tableau context built",
			slog.String("trace_id", traceID),
			slog.Int("rows", dataContext.Rows),
			slog.Int("columns", dataContext.Columns),
			slog.Int("padded_cells", dataContext.Padded),
			slog.Int("dropped_cells", dataContext.Dropped),
			slog.Int("context_bytes", len(dataContext.Text)),
		)
	}

	prompt := BuildPrompt(req.Message, dataContext.Text)
	answer, err := s.invoker.Invoke(ctx, prompt)
	if err != nil {
		observability.ObserveChat("error")
		return ChatResponse{}, err
	}

	outcome := "answered"
	if answer.Fallback {
		outcome = "fallback"
		s.logger.WarnContext(ctx, "model returned no usable text",
			slog.String("trace_id", traceID),
			slog.String("provider", answer.Provider),
			slog.String("model", answer.Model),
		)
	}
	observability.ObserveChat(outcome)
	s.logger.InfoContext(ctx, "chat answered",
		slog.String("trace_id", traceID),
		slog.String("context", string(dataContext.Kind)),
		slog.String("provider", answer.Provider),
		slog.String("model", answer.Model),
		slog.String("duration", answer.Duration.String()),
		slog.Bool("fallback", answer.Fallback),
	)
	return ChatResponse{Response: answer.Text}, nil
}
