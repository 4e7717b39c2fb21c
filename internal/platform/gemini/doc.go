// Package gemini provides a resilient streaming client for Google's Gemini
// API. It wraps the blocking, iterator-style streaming call exposed by the
// google.golang.org/genai SDK and presents it to callers as a single,
// recoverable event sequence.
//
// Key components:
//
// 1. StreamEvent / TextAccumulator:
//   - The event vocabulary emitted while streaming (chunk, heartbeat,
//     complete, error) and a helper that folds chunk events into the
//     final generated text.
//
// 2. Transport:
//   - One attempt's connection to the backend. The production transport
//     runs the SDK's blocking stream on a dedicated goroutine and hands
//     events over an ordered channel; replay and failing transports back
//     the unit tests through the same interface.
//
// 3. Streamer:
//   - Coordinates attempts: retries with exponential backoff, fails over
//     across the configured endpoint list, and emits periodic heartbeat
//     events so downstream consumers can detect stalled streams.
//
// The package depends on google.golang.org/genai for communicating with
// the Gemini API; the wire protocol is owned entirely by the SDK.
package gemini
