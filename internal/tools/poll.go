package tools

import (
	"context"

	"github.com/jpalmerr/genrelay/internal/poller"
)

// PollRequest is the input of smart_poll_result.
//
// It has no Validate method: a blank id is reported by the poller as a
// precondition outcome, like a missing credential.
type PollRequest struct {
	RequestID string `json:"request_id"`
}

func (r *Registry) smartPollTool() Tool {
	return newTool("smart_poll_result",
		"Smart polling tool that automatically checks the status of a generation task. Polls every 15s for up to 120s total. Returns final result or progress if still processing. Requires an API key.\nTip for smart polling: In the video generation task, you should call this tool multiple times to get the latest progress.",
		&Schema{
			Type: "object",
			Properties: map[string]Property{
				"request_id": {
					Type:        "string",
					Description: "The request ID returned from a generate call",
				},
			},
			Required: []string{"request_id"},
		},
		r.smartPoll,
	)
}

// smartPoll blocks until the poller returns an outcome. Job failures and
// timeout-pending are reported results; only error kinds set IsError.
func (r *Registry) smartPoll(ctx context.Context, req PollRequest) (Result, error) {
	out := r.poller.Poll(ctx, poller.Request{
		RequestID:  req.RequestID,
		Credential: r.credentialFor(ctx),
	})

	res := jsonResult(out.Payload())
	res.IsError = res.IsError || out.IsError()
	return res, nil
}
