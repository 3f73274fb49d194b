package genrelay

import (
	"time"

	"github.com/jpalmerr/genrelay/internal/tools"
)

// Declaration describes a tool: its name, description and input schema.
type Declaration = tools.Declaration

// Result is the output of a tool call.
type Result = tools.Result

// ContentBlock is one text or image piece of a [Result].
type ContentBlock = tools.ContentBlock

// Content block types.
const (
	ContentText  = tools.ContentText
	ContentImage = tools.ContentImage
)

// ErrUnknownTool is returned by [Relay.Call] for a name not in the catalogue.
var ErrUnknownTool = tools.ErrUnknownTool

// ErrInvalidArguments is returned by [Relay.Call] when arguments do not fit
// the tool's input.
var ErrInvalidArguments = tools.ErrInvalidArguments

// Progress describes one query attempt of a running poll.
//
// Progress values are delivered to callbacks registered with
// [WithProgressCallback].
type Progress struct {
	// PollID identifies the poll invocation. Two concurrent polls of the same
	// request have different ids.
	PollID string

	// RequestID is the generation job being polled.
	RequestID string

	// Attempt is the 1-based number of the query.
	Attempt int

	// Status is the last status reported by the API, lowercased.
	Status string

	// Percent is the last reported progress, 0..100.
	Percent int

	// Elapsed is measured from the first query.
	Elapsed time.Duration

	// CheckedAt is when the query returned.
	CheckedAt time.Time

	// Err is set when the query failed.
	Err error
}

// Failed reports whether the query itself failed.
func (p Progress) Failed() bool {
	return p.Err != nil
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
