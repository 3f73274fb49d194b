package normalize

import "fmt"

// GenerateResponse is the canonical view of a generate call's answer.
type GenerateResponse struct {
	RequestID string
	Status    string
	Result    string
	Progress  int

	// StatusCode is the numeric envelope status of a nested body.
	StatusCode *int

	Shape Shape
}

// Fields returns the response as a map ready for rendering.
func (g GenerateResponse) Fields() map[string]any {
	fields := map[string]any{
		FieldRequestID: g.RequestID,
		FieldStatus:    g.Status,
		"result":       g.Result,
		FieldProgress:  g.Progress,
	}
	if g.StatusCode != nil {
		fields[FieldStatusCode] = *g.StatusCode
	}
	return fields
}

// ParseGenerate decodes the body returned by the generate endpoints.
//
// Unlike [Normalize] the status string is passed through as sent, since
// callers only need the request id to start polling.
func ParseGenerate(body []byte) (GenerateResponse, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return GenerateResponse{}, &FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err), Body: body}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return GenerateResponse{}, &FormatError{Reason: fmt.Sprintf("expected JSON object, got %s", kindOf(v)), Body: body}
	}

	env := resolve(obj)
	g := GenerateResponse{
		RequestID: stringValue(env.fields[FieldRequestID]),
		Status:    stringValue(env.fields[FieldStatus]),
		Result:    stringValue(env.fields["result"]),
		Progress:  progressValue(env.fields[FieldProgress]),
		Shape:     env.shape,
	}
	if env.shape == ShapeNested {
		if g.RequestID == "" {
			g.RequestID = stringValue(env.outer[FieldRequestID])
		}
		if code, ok := intValue(env.outer[FieldStatus]); ok {
			g.StatusCode = &code
		}
	}
	return g, nil
}
