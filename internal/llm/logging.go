package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/escapebook/internal/logging"
)

// RequestEvent captures one model call for diagnostics and cost tracking.
type RequestEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// EventSink receives a RequestEvent after every model call.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, ev RequestEvent) error
}

// LoggingProvider is a decorator that records every call to a sink and
// to the structured log.
type LoggingProvider struct {
	inner    Provider
	provider string
	sink     EventSink
	log      *logging.Logger
}

// WithLogging wraps p. A nil sink only logs.
func WithLogging(p Provider, provider string, sink EventSink, log *logging.Logger) Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &LoggingProvider{inner: p, provider: provider, sink: sink, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	ev := RequestEvent{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = resp.Text
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("model call failed",
			"provider", l.provider, "model", ev.Model, "purpose", purpose,
			"latency_ms", ev.LatencyMs, "error", err)
	} else {
		l.log.Debug("model call",
			"provider", l.provider, "model", ev.Model, "purpose", purpose,
			"latency_ms", ev.LatencyMs, "input_tokens", ev.InputTokens,
			"output_tokens", ev.OutputTokens, "stop", resp.StopReason)
	}

	// Recording is best-effort; a broken sink never fails the call.
	if l.sink != nil {
		if logErr := l.sink.AppendLLMRequest(ctx, ev); logErr != nil {
			l.log.Warn("failed to record model request", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(def)
			b.WriteString("\n")
		}
	}
	return b.String()
}
