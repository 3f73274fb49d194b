// Package store keeps poll progress observations and fans them out to
// subscribers.
//
// Every query attempt of a poll invocation produces a [ProgressRecord]. The
// store keeps the latest record per poll id, evicting the oldest poll once
// the capacity is reached, and pushes each record to subscribers for
// streaming.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [ProgressRecord]: Storage representation of one observation
//
// The store is telemetry only: pollers write to it and never read it back.
// Subscribers receive updates via channels with non-blocking sends, so slow
// subscribers miss updates rather than stall a poll.
package store
