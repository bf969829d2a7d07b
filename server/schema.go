package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const pointSchema = `{
	"type": "array",
	"items": {"type": "integer"},
	"minItems": 3,
	"maxItems": 3
}`

const sizeSchema = `{
	"type": "array",
	"items": {"type": "integer", "minimum": 0},
	"minItems": 3,
	"maxItems": 3
}`

const positiveSchema = `{
	"type": "array",
	"items": {"type": "integer", "minimum": 1},
	"minItems": 3,
	"maxItems": 3
}`

var (
	densitySchema = jsonschema.MustCompileString("density.json", `{
	"type": "object",
	"properties": {
		"point": `+pointSchema+`,
		"density": {"type": "number"}
	},
	"required": ["point", "density"],
	"additionalProperties": false
}`)

	editSchema = jsonschema.MustCompileString("edit.json", `{
	"type": "object",
	"properties": {
		"point": `+pointSchema+`,
		"size": `+sizeSchema+`,
		"density": {"type": "number"}
	},
	"required": ["point", "size", "density"],
	"additionalProperties": false
}`)

	volumeSchema = jsonschema.MustCompileString("volume.json", `{
	"type": "object",
	"properties": {
		"points_per_chunk": `+positiveSchema+`,
		"chunk_count": `+positiveSchema+`,
		"chunks": {"type": "array", "items": `+pointSchema+`},
		"test_pattern": {"type": "boolean"}
	},
	"anyOf": [
		{"required": ["points_per_chunk", "chunk_count"]},
		{"required": ["test_pattern"], "properties": {"test_pattern": {"const": true}}}
	],
	"additionalProperties": false
}`)
)

// decodeValidated reads a JSON request body, validates it against the schema and then
// unmarshals it into dst.
func decodeValidated(r *http.Request, sch *jsonschema.Schema, dst interface{}) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read request body: %v", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("request body is not valid JSON: %v", err)
	}
	if err := sch.Validate(generic); err != nil {
		return fmt.Errorf("invalid request: %s", strings.TrimSpace(err.Error()))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unable to decode request: %v", err)
	}
	return nil
}
