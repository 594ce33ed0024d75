// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for a task type, or nil.
func (r *ActivityRegistry) FindByTaskType(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// ValidateInput checks a job payload against the activity's input schema.
// Activities without a schema accept anything.
func (r *ActivityRegistry) ValidateInput(taskType string, payload map[string]interface{}) error {
	activity := r.FindByTaskType(taskType)
	if activity == nil {
		return fmt.Errorf("unknown task type: %s", taskType)
	}
	return validateAgainst(activity.InputSchema, payload)
}

// ValidateOutput checks a worker result against the activity's output schema.
func (r *ActivityRegistry) ValidateOutput(taskType string, payload map[string]interface{}) error {
	activity := r.FindByTaskType(taskType)
	if activity == nil {
		return fmt.Errorf("unknown task type: %s", taskType)
	}
	return validateAgainst(activity.OutputSchema, payload)
}

func validateAgainst(schema map[string]interface{}, data map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("data validation failed: %v", errs)
	}

	return nil
}
