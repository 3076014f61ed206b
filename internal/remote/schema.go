package remote

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemasFS embed.FS

// compileQuestionnaireSchema compiles the embedded schema the remote
// payloads are checked against before mapping. Validating at the
// boundary keeps schema drift out of the reconciliation code.
func compileQuestionnaireSchema() (*jsonschema.Schema, error) {
	data, err := schemasFS.ReadFile("schemas/questionnaire.schema.json")
	if err != nil {
		return nil, fmt.Errorf("read questionnaire schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("questionnaire.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile("questionnaire.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validatePayload checks raw JSON against the questionnaire schema.
func validatePayload(schema *jsonschema.Schema, raw []byte) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
