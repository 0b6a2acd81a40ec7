package pkgfile

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "buildgen package definition",
  "type": "object",
  "required": ["name", "type"],
  "additionalProperties": false,
  "properties": {
    "name": { "type": "string", "pattern": "^[A-Z][A-Za-z0-9_]*(\\.[A-Z][A-Za-z0-9_]*)*$" },
    "type": { "type": "string", "enum": ["library", "executable", "header_library", "external"] },
    "version": { "type": "string" },
    "dependencies": {
      "type": "array",
      "items": { "type": "string", "pattern": "^[A-Z][A-Za-z0-9_]*(\\.[A-Z][A-Za-z0-9_]*)*$" }
    },
    "platforms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": { "type": "string", "pattern": "^[a-z][a-z0-9_]*$" },
          "supported": { "type": "boolean" }
        }
      }
    },
    "variants": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "options"],
        "additionalProperties": false,
        "properties": {
          "name": { "type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_]*$" },
          "options": { "type": "array", "items": { "type": "string" }, "minItems": 1 }
        }
      }
    },
    "recipe": {
      "type": "object",
      "required": ["name", "version"],
      "additionalProperties": false,
      "properties": {
        "name": { "type": "string", "pattern": "^[A-Za-z0-9][A-Za-z0-9_.-]*$" },
        "version": { "type": "string" },
        "commands": {
          "type": "array",
          "items": { "type": "array", "items": { "type": "string" }, "minItems": 1 }
        }
      }
    }
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	var schemaDoc interface{}
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to decode schema JSON: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("package.json", schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add schema resource: %v", err))
	}
	var err error
	compiledSchema, err = c.Compile("package.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema: %v", err))
	}
}

// ValidateSchema validates raw YAML bytes against the package definition schema.
func ValidateSchema(yamlData []byte) error {
	var raw interface{}
	if err := yaml.Unmarshal(yamlData, &raw); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	if err := compiledSchema.Validate(toJSONValue(raw)); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// toJSONValue converts yaml.v3 values to the types encoding/json would produce.
func toJSONValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for k, val := range v {
			result[k] = toJSONValue(val)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, val := range v {
			result[i] = toJSONValue(val)
		}
		return result
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return v
	}
}
