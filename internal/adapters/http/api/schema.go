package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const maxBodyBytes = 1 << 20

const scoreMapSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "cryptography":       {"type": "number", "minimum": 0, "maximum": 10},
    "distributedSystems": {"type": "number", "minimum": 0, "maximum": 10},
    "economics":          {"type": "number", "minimum": 0, "maximum": 10},
    "coding":             {"type": "number", "minimum": 0, "maximum": 10},
    "writing":            {"type": "number", "minimum": 0, "maximum": 10},
    "community":          {"type": "number", "minimum": 0, "maximum": 10}
  }
}`

const namedScoresSchema = `{
  "type": "object",
  "required": ["name", "scores"],
  "properties": {
    "name":   {"type": "string", "minLength": 1, "maxLength": 64},
    "note":   {"type": "string", "maxLength": 500},
    "scores": {"$ref": "https://satoshi.schemas.local/scores.schema.json"}
  }
}`

const scoreUpdateSchema = `{
  "type": "object",
  "required": ["score"],
  "properties": {
    "score":    {"type": "number", "minimum": 0, "maximum": 10},
    "note":     {"type": "string", "maxLength": 500},
    "event_id": {"type": "string", "maxLength": 128}
  }
}`

var (
	scoresSchema = mustCompile(map[string]string{"scores": scoreMapSchema}, "scores")
	namedSchema  = mustCompile(map[string]string{"scores": scoreMapSchema, "named": namedScoresSchema}, "named")
	updateSchema = mustCompile(map[string]string{"update": scoreUpdateSchema}, "update")
)

func schemaURL(name string) string {
	return fmt.Sprintf("https://satoshi.schemas.local/%s.schema.json", name)
}

func mustCompile(resources map[string]string, root string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for name, doc := range resources {
		if err := c.AddResource(schemaURL(name), strings.NewReader(doc)); err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
	}
	return c.MustCompile(schemaURL(root))
}

// decodeBody reads a JSON body, checks it against schema and decodes it into out.
func decodeBody(r *http.Request, schema *jsonschema.Schema, out any) error {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrBadRequest, err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err)
	}
	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
