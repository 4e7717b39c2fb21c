package gemini

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testConfig() StreamConfig {
	return StreamConfig{
		APIKey:      "test-key",
		Model:       "models/test",
		Endpoint:    "primary",
		BackoffBase: time.Millisecond,
		BackoffMax:  5 * time.Millisecond,
	}
}

// replayTransport replays a predefined list of events, optionally pausing
// between them.
type replayTransport struct {
	events []StreamEvent
	delay  time.Duration
	ch     chan StreamEvent
}

func (t *replayTransport) Enter(ctx context.Context) error {
	t.ch = make(chan StreamEvent)
	go func() {
		defer close(t.ch)
		for _, event := range t.events {
			if t.delay > 0 {
				select {
				case <-time.After(t.delay):
				case <-ctx.Done():
					return
				}
			}
			select {
			case t.ch <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

func (t *replayTransport) Events() <-chan StreamEvent {
	return t.ch
}

func (t *replayTransport) Exit(ctx context.Context) error {
	return nil
}

// failingTransport rejects entry to trigger the retry path.
type failingTransport struct {
	err error
}

func (t *failingTransport) Enter(ctx context.Context) error {
	return t.err
}

func (t *failingTransport) Events() <-chan StreamEvent {
	return nil
}

func (t *failingTransport) Exit(ctx context.Context) error {
	return nil
}

func collectEvents(t *testing.T, s *Streamer, req GenerateRequest) ([]StreamEvent, error) {
	t.Helper()

	var events []StreamEvent
	for event, err := range s.Stream(context.Background(), req) {
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
	return events, nil
}

func TestStreamDeliversChunksAndCompletes(t *testing.T) {
	events := []StreamEvent{
		{Kind: EventChunk, Text: "Hello"},
		{Kind: EventChunk, Text: ", world"},
		{Kind: EventComplete},
	}

	streamer, err := NewStreamer(testConfig(), setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			return &replayTransport{events: events}
		}))
	require.NoError(t, err)

	var accumulator TextAccumulator
	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.NoError(t, err)

	kinds := make([]EventKind, 0, len(emitted))
	for _, event := range emitted {
		accumulator.Push(event)
		kinds = append(kinds, event.Kind)
	}

	assert.Equal(t, []EventKind{EventChunk, EventChunk, EventComplete}, kinds)
	assert.Equal(t, "Hello, world", accumulator.Text())
}

func TestStreamRaisesAfterRetryBudgetExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	var mu sync.Mutex
	attempts := 0

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			mu.Lock()
			attempts++
			mu.Unlock()
			return &failingTransport{err: errors.New("boom")}
		}))
	require.NoError(t, err)

	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.Error(t, err)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, 3, streamErr.Attempts)
	assert.Contains(t, streamErr.Error(), "boom")
	assert.Empty(t, emitted, "no events should be forwarded when every attempt fails")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts, "one initial attempt plus two retries")
}

func TestStreamFailsOverToFallbackEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackEndpoints = []string{"secondary"}
	cfg.MaxRetries = 2

	var mu sync.Mutex
	primaryUsed := false

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			mu.Lock()
			defer mu.Unlock()
			if cfg.Endpoint == "primary" && !primaryUsed {
				primaryUsed = true
				return &failingTransport{err: errors.New("primary unreachable")}
			}
			return &replayTransport{events: []StreamEvent{
				{Kind: EventChunk, Text: cfg.Endpoint},
				{Kind: EventComplete},
			}}
		}))
	require.NoError(t, err)

	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.NoError(t, err)

	require.Len(t, emitted, 2)
	assert.Equal(t, EventChunk, emitted[0].Kind)
	assert.Equal(t, "secondary", emitted[0].Text)
	assert.Equal(t, EventComplete, emitted[1].Kind)
}

func TestStreamKeepsChunksFromFailedAttempts(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 2

	var mu sync.Mutex
	attempts := 0

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return &replayTransport{events: []StreamEvent{
					{Kind: EventChunk, Text: "A"},
					{Kind: EventError, Text: "mid-stream failure"},
				}}
			}
			return &replayTransport{events: []StreamEvent{
				{Kind: EventChunk, Text: "B"},
				{Kind: EventComplete},
			}}
		}))
	require.NoError(t, err)

	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.NoError(t, err)

	require.Len(t, emitted, 3)
	assert.Equal(t, "A", emitted[0].Text)
	assert.Equal(t, "B", emitted[1].Text)
	assert.Equal(t, EventComplete, emitted[2].Kind)
}

func TestStreamSuppressesErrorEventsFromCaller(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 1

	var mu sync.Mutex
	attempts := 0

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return &replayTransport{events: []StreamEvent{
					{Kind: EventError, Text: "transient"},
				}}
			}
			return &replayTransport{events: []StreamEvent{
				{Kind: EventComplete},
			}}
		}))
	require.NoError(t, err)

	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.NoError(t, err)

	for _, event := range emitted {
		assert.NotEqual(t, EventError, event.Kind)
	}
}

func TestStreamEmitsHeartbeatsWhileAttemptRuns(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = 5 * time.Millisecond

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			return &replayTransport{
				events: []StreamEvent{
					{Kind: EventChunk, Text: "slow"},
					{Kind: EventComplete},
				},
				delay: 25 * time.Millisecond,
			}
		}))
	require.NoError(t, err)

	var accumulator TextAccumulator
	heartbeats := 0
	emitted, err := collectEvents(t, streamer, GenerateRequest{})
	require.NoError(t, err)

	for _, event := range emitted {
		accumulator.Push(event)
		if event.Kind == EventHeartbeat {
			heartbeats++
		}
	}

	assert.Greater(t, heartbeats, 0, "heartbeats should be interleaved with slow chunks")
	assert.Equal(t, "slow", accumulator.Text(), "heartbeats must not affect accumulated text")
	assert.Equal(t, EventComplete, emitted[len(emitted)-1].Kind)
}

func TestStreamContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.HeartbeatInterval = time.Millisecond

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			// Never produces a terminal event; the attempt only ends
			// through cancellation.
			return &replayTransport{
				events: []StreamEvent{{Kind: EventChunk, Text: "x"}},
				delay:  time.Hour,
			}
		}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	var streamErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, err := range streamer.Stream(ctx, GenerateRequest{}) {
			if err != nil {
				streamErr = err
				return
			}
		}
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not unwind after cancellation")
	}

	assert.ErrorIs(t, streamErr, context.Canceled)
}

func TestStreamAbandonedConsumerStopsCleanly(t *testing.T) {
	cfg := testConfig()

	streamer, err := NewStreamer(cfg, setupTestLogger(),
		WithTransportFactory(func(cfg StreamConfig, req GenerateRequest) Transport {
			return &replayTransport{events: []StreamEvent{
				{Kind: EventChunk, Text: "first"},
				{Kind: EventChunk, Text: "second"},
				{Kind: EventComplete},
			}}
		}))
	require.NoError(t, err)

	seen := 0
	for event, err := range streamer.Stream(context.Background(), GenerateRequest{}) {
		require.NoError(t, err)
		require.Equal(t, EventChunk, event.Kind)
		seen++
		break
	}

	assert.Equal(t, 1, seen)
}

func TestEndpointSelectionSaturatesAtLastEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackEndpoints = []string{"secondary", "tertiary"}

	tests := []struct {
		attempt int
		want    string
	}{
		{0, "primary"},
		{1, "secondary"},
		{2, "tertiary"},
		{3, "tertiary"},
		{10, "tertiary"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, cfg.EndpointFor(tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestEndpointSelectionWithoutFallbacks(t *testing.T) {
	cfg := testConfig()

	for attempt := 0; attempt < 5; attempt++ {
		assert.Equal(t, "primary", cfg.EndpointFor(attempt))
	}
}

func TestBackoffDelayLaw(t *testing.T) {
	base := time.Second
	max := 30 * time.Second

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{20, 30 * time.Second},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, backoffDelay(base, max, tc.attempt), "attempt %d", tc.attempt)
	}
}

func TestNewStreamerValidatesConfig(t *testing.T) {
	logger := setupTestLogger()

	_, err := NewStreamer(StreamConfig{}, logger)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	cfg := testConfig()
	cfg.Model = ""
	_, err = NewStreamer(cfg, logger)
	assert.ErrorIs(t, err, ErrMissingModel)

	cfg = testConfig()
	cfg.Endpoint = ""
	_, err = NewStreamer(cfg, logger)
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	cfg = testConfig()
	cfg.MaxRetries = -1
	_, err = NewStreamer(cfg, logger)
	assert.ErrorIs(t, err, ErrInvalidRetries)

	cfg = testConfig()
	cfg.BackoffBase = time.Second
	cfg.BackoffMax = 0
	_, err = NewStreamer(cfg, logger)
	assert.ErrorIs(t, err, ErrInvalidBackoff)

	_, err = NewStreamer(testConfig(), nil)
	assert.Error(t, err)
}
