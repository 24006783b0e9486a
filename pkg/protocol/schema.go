package protocol

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://go-swarm-convergence.local/schemas/"

const (
	schemaGenerate           = "generate.json"
	schemaGenerateResponse   = "generate-response.json"
	schemaUpdateNextPosition = "update-nextPosition.json"
	schemaError              = "error.json"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// compileSchemas registers every embedded schema with one compiler so that
// they can $ref each other (robot.json), then compiles the message schemas.
func compileSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			schemasErr = err
			return
		}
		c := jsonschema.NewCompiler()
		for _, e := range entries {
			b, err := schemaFS.ReadFile("schemas/" + e.Name())
			if err != nil {
				schemasErr = err
				return
			}
			if err := c.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(b)); err != nil {
				schemasErr = fmt.Errorf("failed to add schema %s: %w", e.Name(), err)
				return
			}
		}
		compiled := make(map[string]*jsonschema.Schema)
		for _, name := range []string{schemaGenerate, schemaGenerateResponse, schemaUpdateNextPosition, schemaError} {
			sch, err := c.Compile(schemaBaseURL + name)
			if err != nil {
				schemasErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
				return
			}
			compiled[name] = sch
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

func validate(name string, doc interface{}) error {
	compiled, err := compileSchemas()
	if err != nil {
		return err
	}
	if err := compiled[name].Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}
