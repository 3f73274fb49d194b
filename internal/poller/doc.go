// Package poller implements the bounded result-polling state machine behind
// the smart_poll_result tool.
//
// One call to [Poller.Poll] walks
//
//	NotStarted -> InitialWait -> Polling -> {Terminal, TimedOut}
//
// and always returns exactly one [Outcome]. Sleeps go through an injected
// [Clock] so tests can simulate elapsed time.
//
// The main components are:
//
//   - [Poller]: runs one poll invocation per call, with no state shared
//     between calls
//   - [Policy]: initial delay, poll interval and overall budget
//   - [Querier]: the single-shot status query the loop repeats
//   - [Outcome]: the caller-visible result of an invocation
//   - [Observation]: per-attempt progress, reported to an optional observer
package poller
