// Package server exposes the tool catalogue over HTTP.
//
// Routes:
//
//   - GET /api/tools: tool declarations as JSON
//   - POST /api/tools/call: run a tool, body {"name": ..., "arguments": {...}}
//   - GET /api/progress: snapshot of poll progress records
//   - GET /api/sse: Server-Sent Events stream of progress records
//   - GET /healthz: liveness check
//   - GET /: embedded progress page, when assets are supplied
//
// A credential sent in the X-Api-Key header is attached to the tool call's
// context, so concurrent clients may use different keys.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
