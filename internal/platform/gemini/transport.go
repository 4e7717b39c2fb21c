package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

// workerJoinTimeout bounds how long Exit waits for the background worker.
// A worker stuck inside the blocking SDK call is abandoned after this
// interval rather than blocking the caller's retry loop.
const workerJoinTimeout = 100 * time.Millisecond

// Transport is one attempt's connection to the streaming backend.
//
// Enter acquires the attempt's resources and starts event production; it
// may fail, for example when the backend rejects the endpoint. Events
// returns the ordered event sequence for the attempt, terminated either by
// an end-of-attempt sentinel or by closing the channel. Exit releases
// resources unconditionally and must not block indefinitely.
type Transport interface {
	Enter(ctx context.Context) error
	Events() <-chan StreamEvent
	Exit(ctx context.Context) error
}

// TransportFactory builds a Transport for a single attempt. The config
// passed in carries the endpoint selected for that attempt.
type TransportFactory func(cfg StreamConfig, req GenerateRequest) Transport

// genaiTransport streams tokens through the google.golang.org/genai SDK.
// The SDK call is a blocking pull iterator, so Enter starts one dedicated
// goroutine that runs it to completion or failure and hands each event
// over to the consumer side through the events channel.
type genaiTransport struct {
	cfg    StreamConfig
	req    GenerateRequest
	logger *slog.Logger

	events   chan StreamEvent
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newGenaiTransport(cfg StreamConfig, req GenerateRequest, logger *slog.Logger) *genaiTransport {
	return &genaiTransport{
		cfg:    cfg,
		req:    req,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Enter creates the SDK client for the selected endpoint and starts the
// background worker.
func (t *genaiTransport) Enter(ctx context.Context) error {
	timeout := t.cfg.RequestTimeout
	if t.req.Timeout > 0 {
		timeout = t.req.Timeout
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  t.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}
	if t.cfg.Endpoint != "" {
		clientConfig.HTTPOptions.BaseURL = t.cfg.Endpoint
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	t.events = make(chan StreamEvent)
	go t.run(ctx, client)
	return nil
}

// Events returns the attempt's event sequence. Valid only after Enter
// succeeds.
func (t *genaiTransport) Events() <-chan StreamEvent {
	return t.events
}

// Exit signals the worker to stop and waits a bounded interval for it to
// finish. Safe to call more than once; the worker is never joined twice.
func (t *genaiTransport) Exit(ctx context.Context) error {
	t.stopOnce.Do(func() { close(t.stop) })

	select {
	case <-t.done:
	case <-time.After(workerJoinTimeout):
		t.logger.Warn("abandoning gemini stream worker",
			"model", t.cfg.Model,
			"endpoint", t.cfg.Endpoint)
	case <-ctx.Done():
	}
	return nil
}

// run executes the blocking streaming call. It converts each backend chunk
// into a chunk event and finishes with a terminal complete/error event.
// The end-of-attempt sentinel is enqueued in a deferred block so it fires
// even when the stream fails part way through.
func (t *genaiTransport) run(ctx context.Context, client *genai.Client) {
	defer close(t.done)
	defer t.send(newEvent(eventEndOfAttempt))

	for resp, err := range client.Models.GenerateContentStream(ctx, t.cfg.Model, t.req.Contents, t.generateConfig()) {
		if err != nil {
			t.logger.Error("gemini stream attempt failed",
				"error", err,
				"model", t.cfg.Model,
				"endpoint", t.cfg.Endpoint)
			t.send(errorEvent(err.Error()))
			return
		}

		if !t.send(chunkEvent(resp)) {
			return
		}
	}

	t.send(newEvent(EventComplete))
}

// send hands an event to the consumer side, giving up when the transport
// has been told to stop. Returns false when the event was dropped.
func (t *genaiTransport) send(event StreamEvent) bool {
	select {
	case t.events <- event:
		return true
	case <-t.stop:
		return false
	}
}

// generateConfig merges the request's generation parameters with its
// structural fields into a single SDK config.
func (t *genaiTransport) generateConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if t.req.GenerationConfig != nil {
		copied := *t.req.GenerationConfig
		config = &copied
	}

	if t.req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: t.req.SystemInstruction}},
		}
	}
	if len(t.req.Tools) > 0 {
		config.Tools = t.req.Tools
	}
	if t.req.ToolConfig != nil {
		config.ToolConfig = t.req.ToolConfig
	}
	if len(t.req.SafetySettings) > 0 {
		config.SafetySettings = t.req.SafetySettings
	}

	return config
}
