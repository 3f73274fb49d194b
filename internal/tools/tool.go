package tools

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Tool is one callable entry of the catalogue.
type Tool interface {
	Declaration() Declaration
	Call(ctx context.Context, args map[string]any) (Result, error)
}

// Validator is implemented by requests that check their own fields.
type Validator interface {
	Validate() error
}

// handler runs a tool with its decoded request.
type handler[Req any] func(ctx context.Context, req Req) (Result, error)

// typedTool decodes arguments into Req, validates and runs the handler.
type typedTool[Req any] struct {
	decl Declaration
	run  handler[Req]
}

func newTool[Req any](name, description string, schema *Schema, run handler[Req]) Tool {
	return &typedTool[Req]{
		decl: Declaration{Name: name, Description: description, InputSchema: schema},
		run:  run,
	}
}

func (t *typedTool[Req]) Declaration() Declaration {
	return t.decl
}

// Call decodes args and runs the tool.
//
// Arguments of the wrong shape fail with [ErrInvalidArguments]. A request
// that fails validation is not an error of the call: it yields an error
// result carrying the validation message.
func (t *typedTool[Req]) Call(ctx context.Context, args map[string]any) (Result, error) {
	var req Req
	if err := decodeArgs(args, &req); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, t.decl.Name, err)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return ErrorResult(err.Error()), nil
		}
	}

	return t.run(ctx, req)
}

// decodeArgs maps args onto out using the json tags of out's fields.
// Input is weakly typed so "2" decodes into an int field.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
