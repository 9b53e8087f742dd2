package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidPayload is returned when a body matches neither the results nor
// the error shape.
var ErrInvalidPayload = errors.New("invalid search payload")

// A body is the error arm when "error" is a non-empty string. Otherwise it
// must carry a results array; a falsy "error" alongside it is ignored.
const payloadSchema = `{
  "oneOf": [
    {
      "type": "object",
      "required": ["error"],
      "properties": {
        "error": {"type": "string", "minLength": 1}
      }
    },
    {
      "type": "object",
      "required": ["results"],
      "properties": {
        "error": {"enum": [null, "", false, 0]},
        "results": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["score"],
            "properties": {
              "title": {"type": ["string", "null"]},
              "description": {"type": ["string", "null"]},
              "score": {"type": "number"},
              "category_id": {"type": ["string", "null"]}
            }
          }
        }
      }
    }
  ]
}`

var schema = mustSchema(payloadSchema)

func mustSchema(s string) *gojsonschema.Schema {
	sc, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("search: payload schema: %v", err))
	}
	return sc
}

// Decode validates body against the payload schema and returns the arm it
// matches.
func Decode(body []byte) (Payload, error) {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Payload{}, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}

	var wire struct {
		Error   any             `json:"error"`
		Details any             `json:"details"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if msg, ok := wire.Error.(string); ok && msg != "" {
		details, _ := wire.Details.(string)
		return Payload{Err: &ErrorPayload{Error: msg, Details: details}}, nil
	}
	var results []Result
	if err := json.Unmarshal(wire.Results, &results); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if results == nil {
		results = []Result{}
	}
	return Payload{Results: results}, nil
}

// DecodeAnswer reads a RAG answer body. A non-empty string "error" is
// reported as an ErrorPayload with a nil error.
func DecodeAnswer(body []byte) (*Answer, *ErrorPayload, error) {
	var wire struct {
		Answer  string `json:"answer"`
		Error   any    `json:"error"`
		Details any    `json:"details"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, nil, fmt.Errorf("decode answer: %w", err)
	}
	if msg, ok := wire.Error.(string); ok && msg != "" {
		details, _ := wire.Details.(string)
		return nil, &ErrorPayload{Error: msg, Details: details}, nil
	}
	return &Answer{Answer: wire.Answer, Raw: body}, nil, nil
}
