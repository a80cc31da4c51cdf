package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed result.schema.json
var resultSchemaJSON []byte

var (
	schemaOnce      sync.Once
	resultSchema    *jsonschema.Schema
	resultSchemaErr error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource("result.schema.json", bytes.NewReader(resultSchemaJSON)); err != nil {
			resultSchemaErr = fmt.Errorf("failed to load result schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile("result.schema.json")
		if resultSchemaErr != nil {
			resultSchemaErr = fmt.Errorf("failed to compile result schema: %w", resultSchemaErr)
		}
	})
	return resultSchema, resultSchemaErr
}

// Validate checks a Result against the published JSON schema.
func Validate(res Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks raw result JSON, e.g. a result edited by a client.
func ValidateJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode result JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("result does not match schema: %w", err)
	}
	return nil
}

// Schema returns the result JSON schema document.
func Schema() []byte {
	return bytes.Clone(resultSchemaJSON)
}
