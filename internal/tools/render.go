package tools

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/jpalmerr/genrelay/internal/apiclient"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonResult renders v as indented JSON in a text block.
func jsonResult(v any) Result {
	out, err := MarshalIndent(v)
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to encode result: %v", err))
	}
	return TextResult(string(out))
}

// MarshalIndent encodes v with two-space indentation.
//
// jsoniter's own MarshalIndent leaves nested arrays and objects flush-left,
// so the compact encoding is re-indented with encoding/json.
func MarshalIndent(v any) ([]byte, error) {
	compact, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := stdjson.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// apiErrorResult renders a failed API call.
//
// Rejections by the API read "API Error: {code} - {body}". Everything else
// reads "Request Error: {detail}".
func apiErrorResult(err error) Result {
	var te *apiclient.TransportError
	if errors.As(err, &te) && te.Kind == apiclient.KindStatus {
		return ErrorResult(te.Error())
	}
	return ErrorResult(fmt.Sprintf("Request Error: %v", err))
}
