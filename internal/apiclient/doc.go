// Package apiclient talks to the remote generation API.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with pooled connections, per-request
//     timeouts and body size limits
//   - [API]: typed calls for listing effects, submitting generation jobs,
//     querying poll results and downloading media
//   - [TransportError]: every failed exchange, classified as timeout,
//     connection, status or canceled
//
// A status of 400 or above is a [KindStatus] error and is never retried by
// callers. Timeouts and connection failures are transient.
package apiclient
