// Package genrelay relays tool calls to a remote generative-media API.
//
// A [Relay] exposes a small catalogue of tools: listing visual effects,
// submitting image or video generation jobs, waiting for a job's result,
// and rendering result media. It can be used as a library through
// [Relay.Call] or served over HTTP with [Relay.Start].
//
// # Quick Start
//
//	relay, err := genrelay.New(
//	    genrelay.WithCredential(os.Getenv("ETERNAL_AI_API_KEY")),
//	)
//	if err != nil {
//	    slog.Error("failed to create relay", "error", err)
//	    os.Exit(1)
//	}
//	defer relay.Close()
//
//	res, err := relay.Call(ctx, "generate_with_effect", map[string]any{
//	    "effect_id": "1234",
//	})
//
// # Polling
//
// Generation is asynchronous. The smart_poll_result tool waits an initial
// delay, then queries the job at a fixed interval until it succeeds, fails,
// or the polling budget runs out. The defaults are 30s, 15s and 120s and can
// be changed with [WithPollPolicy]. A job still running when the budget ends
// is reported with its last progress and a message asking the caller to poll
// again; it is not an error.
//
// Every query attempt is published as a [Progress] value to callbacks
// registered with [WithProgressCallback] and to the HTTP progress stream.
//
// # Credentials
//
// The credential set with [WithCredential] is the default. A different one
// can be supplied per call with [WithCallCredential], or per HTTP request
// with the X-Api-Key header.
//
// # Architecture
//
// genrelay consists of several internal packages (under internal/):
//
//   - internal/apiclient: pooled HTTP client and typed API calls
//   - internal/normalize: canonical view of the API's two response shapes
//   - internal/poller: the result polling state machine
//   - internal/tools: tool declarations and dispatch
//   - internal/store: in-memory progress records with pub/sub
//   - internal/server: HTTP transport with Server-Sent Events
//
// The dashboard package embeds a progress page served at "/".
//
// The internal packages are not part of the public API and may change
// without notice.
package genrelay
