package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one compiled schema per name and definition digest, so
// two schemas that share a name never share a compiled form.
var compiled sync.Map

// ValidateJSON checks raw against schema. A nil schema accepts anything.
// Every failure is an *ErrInvalidResponse carrying raw.
func ValidateJSON(schema *Schema, raw json.RawMessage) error {
	return validateResponse(schema, raw)
}

func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf(format, args...)}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid("not JSON: %w", err)
	}
	sch, err := compile(schema)
	if err != nil {
		return invalid("schema %s: %w", schema.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return invalid("does not match %s: %w", schema.Name, err)
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode definition: %w", err)
	}
	digest := sha256.Sum256(def)
	key := schema.Name + "@" + hex.EncodeToString(digest[:8])
	if sch, ok := compiled.Load(key); ok {
		return sch.(*jsonschema.Schema), nil
	}

	// The compiler takes a decoded JSON value rather than the Go map.
	resource, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	url := "schema://" + key + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, resource); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(key, sch)
	return actual.(*jsonschema.Schema), nil
}
