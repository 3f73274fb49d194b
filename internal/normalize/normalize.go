package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Field names of the canonical record.
const (
	FieldRequestID  = "request_id"
	FieldStatus     = "status"
	FieldProgress   = "progress"
	FieldResultURL  = "result_url"
	FieldEffectType = "effect_type"
	FieldStatusCode = "status_code"
)

// Shape tags which wire shape a body arrived in.
type Shape int

const (
	// ShapeFlat means fields live at the top level of the body.
	ShapeFlat Shape = iota

	// ShapeNested means fields live under a "data" object and the top-level
	// "status" is a numeric envelope code.
	ShapeNested
)

// String returns "flat" or "nested".
func (s Shape) String() string {
	if s == ShapeNested {
		return "nested"
	}
	return "flat"
}

// PollResponse is the canonical view of one poll-result body.
type PollResponse struct {
	RequestID  string
	Status     Status
	Progress   int
	ResultURL  string
	EffectType string

	// StatusCode is the numeric envelope status of a nested body.
	// nil for flat bodies or when the envelope status is not numeric.
	StatusCode *int

	Shape Shape

	// Raw is the untouched decoded body.
	Raw map[string]any
}

// Fields returns the normalized fields as a map.
//
// Normalizing the returned map again yields the same fields.
func (r PollResponse) Fields() map[string]any {
	fields := map[string]any{
		FieldRequestID:  r.RequestID,
		FieldStatus:     r.Status.String(),
		FieldProgress:   r.Progress,
		FieldResultURL:  r.ResultURL,
		FieldEffectType: r.EffectType,
	}
	if r.StatusCode != nil {
		fields[FieldStatusCode] = *r.StatusCode
	}
	return fields
}

// Payload returns the source object (the inner "data" object for nested
// bodies) with the normalized fields laid over it. Members the normalizer
// does not know about, such as "result" or "created_at", are kept.
func (r PollResponse) Payload() map[string]any {
	source := r.Raw
	if r.Shape == ShapeNested {
		if inner, ok := r.Raw["data"].(map[string]any); ok {
			source = inner
		}
	}

	payload := make(map[string]any, len(source)+6)
	for k, v := range source {
		payload[k] = v
	}
	for k, v := range r.Fields() {
		payload[k] = v
	}
	return payload
}

// FormatError reports a body that cannot be normalized.
type FormatError struct {
	Reason string
	Body   []byte
}

func (e *FormatError) Error() string {
	return "malformed response: " + e.Reason
}

// Normalize decodes body and maps it into a [PollResponse].
func Normalize(body []byte) (PollResponse, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return PollResponse{}, &FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err), Body: body}
	}
	resp, err := NormalizeValue(v)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Body = body
		}
		return PollResponse{}, err
	}
	return resp, nil
}

// NormalizeValue maps an already decoded body into a [PollResponse].
// v must be a JSON object; anything else is a [FormatError].
func NormalizeValue(v any) (PollResponse, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return PollResponse{}, &FormatError{Reason: fmt.Sprintf("expected JSON object, got %s", kindOf(v))}
	}

	env := resolve(obj)

	resp := PollResponse{
		RequestID:  stringValue(env.fields[FieldRequestID]),
		Status:     ParseStatus(stringValue(env.fields[FieldStatus])),
		Progress:   progressValue(env.fields[FieldProgress]),
		ResultURL:  stringValue(env.fields[FieldResultURL]),
		EffectType: stringValue(env.fields[FieldEffectType]),
		Shape:      env.shape,
		Raw:        obj,
	}

	if resp.ResultURL == "" {
		if s, ok := env.fields["result"].(string); ok {
			resp.ResultURL = s
		}
	}

	if env.shape == ShapeNested {
		if resp.RequestID == "" {
			resp.RequestID = stringValue(env.outer[FieldRequestID])
		}
		if code, ok := intValue(env.outer[FieldStatus]); ok {
			resp.StatusCode = &code
		}
	} else if code, ok := intValue(obj[FieldStatusCode]); ok {
		resp.StatusCode = &code
	}

	return resp, nil
}

// envelope is the resolved form of the two wire shapes.
type envelope struct {
	shape  Shape
	outer  map[string]any
	fields map[string]any
}

func resolve(obj map[string]any) envelope {
	if inner, ok := obj["data"].(map[string]any); ok {
		return envelope{shape: ShapeNested, outer: obj, fields: inner}
	}
	return envelope{shape: ShapeFlat, outer: obj, fields: obj}
}

// stringValue renders scalars as strings. Objects, arrays and null become "".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// intValue coerces numbers and numeric strings to int.
func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		switch {
		case math.IsNaN(t):
			return 0, false
		case t >= math.MaxInt:
			return math.MaxInt, true
		case t <= math.MinInt:
			return math.MinInt, true
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return intValue(f)
	default:
		return 0, false
	}
}

func progressValue(v any) int {
	p, ok := intValue(v)
	if !ok {
		return 0
	}
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
