package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sync"
	"time"
)

// attemptJoinTimeout bounds how long the Streamer waits for an attempt's
// producer goroutines after cancelling them. A transport worker stuck in a
// non-interruptible call is abandoned after this interval.
const attemptJoinTimeout = time.Second

// StreamError is returned when the streaming client exhausts its recovery
// attempts. It wraps the last underlying attempt error.
type StreamError struct {
	Attempts int
	Err      error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("gemini stream failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// Streamer coordinates streaming sessions, retries, heartbeats, and
// endpoint fail-over. A single Streamer is safe for concurrent use; each
// Stream call owns its own attempts and channels.
type Streamer struct {
	cfg     StreamConfig
	logger  *slog.Logger
	factory TransportFactory
}

// StreamerOption customises Streamer construction.
type StreamerOption func(*Streamer)

// WithTransportFactory overrides the production transport. This is the
// seam used by tests to substitute deterministic or failing transports.
func WithTransportFactory(factory TransportFactory) StreamerOption {
	return func(s *Streamer) {
		s.factory = factory
	}
}

// NewStreamer creates a Streamer for the given config.
func NewStreamer(cfg StreamConfig, logger *slog.Logger, opts ...StreamerOption) (*Streamer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stream config: %w", err)
	}

	s := &Streamer{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "gemini_streamer")),
	}
	s.factory = func(cfg StreamConfig, req GenerateRequest) Transport {
		return newGenaiTransport(cfg, req, s.logger)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Stream yields streaming events for the request. Events are delivered in
// production order as soon as they arrive. Failed attempts are retried with
// exponential backoff, failing over across the configured endpoints; chunks
// already delivered from a failed attempt are never retracted. The sequence
// ends without an error after a complete event, and yields a *StreamError
// only once every attempt in the retry budget has failed. Cancelling ctx
// ends the sequence with ctx's error.
func (s *Streamer) Stream(ctx context.Context, req GenerateRequest) iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		var lastErr error

		for attempt := 0; ; attempt++ {
			attemptCfg := s.cfg
			attemptCfg.Endpoint = s.cfg.EndpointFor(attempt)

			outcome := s.runAttempt(ctx, attemptCfg, req, yield)
			switch outcome.state {
			case attemptSucceeded:
				return
			case attemptCanceled:
				yield(StreamEvent{}, outcome.err)
				return
			case attemptStopped:
				// Caller abandoned consumption; everything is already
				// joined, just unwind.
				return
			}

			lastErr = outcome.err
			if attempt >= s.cfg.MaxRetries {
				s.logger.Error("gemini stream retries exhausted",
					"attempts", attempt+1,
					"error", lastErr)
				yield(StreamEvent{}, &StreamError{Attempts: attempt + 1, Err: lastErr})
				return
			}

			delay := backoffDelay(s.cfg.BackoffBase, s.cfg.BackoffMax, attempt)
			s.logger.Warn("retrying gemini stream",
				"attempt", attempt+1,
				"endpoint", attemptCfg.Endpoint,
				"delay", delay,
				"error", lastErr)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				yield(StreamEvent{}, ctx.Err())
				return
			}
		}
	}
}

type attemptState int

const (
	attemptSucceeded attemptState = iota
	attemptFailed
	attemptCanceled
	attemptStopped
)

type attemptOutcome struct {
	state attemptState
	err   error
}

// runAttempt executes one transport lifecycle against one endpoint. The
// transport pump and the heartbeat task write into a merge channel created
// fresh for the attempt; events are forwarded to the caller in arrival
// order, except for the internal end-of-attempt sentinel and error events,
// which drive the state machine.
func (s *Streamer) runAttempt(
	ctx context.Context,
	cfg StreamConfig,
	req GenerateRequest,
	yield func(StreamEvent, error) bool,
) attemptOutcome {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	merge := make(chan StreamEvent)
	var wg sync.WaitGroup

	transport := s.factory(cfg, req)

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.pumpTransport(attemptCtx, transport, merge)
	}()

	if cfg.HeartbeatInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emitHeartbeats(attemptCtx, merge, cfg.HeartbeatInterval)
		}()
	}

	// join cancels both producers and waits a bounded interval for them,
	// so no attempt leaks background work past its own lifetime.
	join := func() {
		cancel()
		if !joinWithTimeout(&wg, attemptJoinTimeout) {
			s.logger.Warn("abandoning stream attempt workers",
				"endpoint", cfg.Endpoint)
		}
	}

	for {
		select {
		case event := <-merge:
			switch event.Kind {
			case eventEndOfAttempt:
				// Attempt ended without a terminal event: the stream
				// simply ran dry, which counts as success.
				join()
				return attemptOutcome{state: attemptSucceeded}

			case EventError:
				join()
				message := event.Text
				if message == "" {
					message = "unknown gemini error"
				}
				return attemptOutcome{state: attemptFailed, err: errors.New(message)}

			case EventComplete:
				if !yield(event, nil) {
					join()
					return attemptOutcome{state: attemptStopped}
				}
				join()
				return attemptOutcome{state: attemptSucceeded}

			default:
				if !yield(event, nil) {
					join()
					return attemptOutcome{state: attemptStopped}
				}
			}

		case <-ctx.Done():
			join()
			return attemptOutcome{state: attemptCanceled, err: ctx.Err()}
		}
	}
}

// pumpTransport runs one transport lifecycle, forwarding its events into
// the merge channel. The end-of-attempt sentinel is enqueued in a deferred
// block so the attempt always terminates, including when Enter fails
// before any event is produced.
func (s *Streamer) pumpTransport(ctx context.Context, transport Transport, merge chan<- StreamEvent) {
	defer sendEvent(ctx, merge, newEvent(eventEndOfAttempt))

	if err := transport.Enter(ctx); err != nil {
		sendEvent(ctx, merge, errorEvent(err.Error()))
		return
	}
	defer func() {
		// Exit gets its own deadline: the attempt context is usually
		// already cancelled by the time we get here.
		exitCtx, exitCancel := context.WithTimeout(context.Background(), attemptJoinTimeout)
		defer exitCancel()
		if err := transport.Exit(exitCtx); err != nil {
			s.logger.Warn("transport exit failed", "error", err)
		}
	}()

	for {
		select {
		case event, ok := <-transport.Events():
			if !ok || event.Kind == eventEndOfAttempt {
				return
			}
			if !sendEvent(ctx, merge, event) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// emitHeartbeats writes a heartbeat event into the merge channel every
// interval until the attempt ends.
func emitHeartbeats(ctx context.Context, merge chan<- StreamEvent, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !sendEvent(ctx, merge, newEvent(EventHeartbeat)) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent delivers an event unless the attempt has been cancelled.
// Returns false when the event was dropped.
func sendEvent(ctx context.Context, ch chan<- StreamEvent, event StreamEvent) bool {
	select {
	case ch <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// backoffDelay computes the delay before the retry following the given
// 0-based attempt index: min(base * 2^attempt, max).
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := float64(base) * math.Pow(2, float64(attempt))
	if max > 0 && delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}

// joinWithTimeout waits for the group up to the given duration. Returns
// false when the wait timed out and the goroutines were abandoned.
func joinWithTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
