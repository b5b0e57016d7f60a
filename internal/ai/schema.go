package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/resume_package.json
var resumePackageSchemaBytes []byte

//go:embed schemas/project_update.json
var projectUpdateSchemaBytes []byte

// Schema names sent to providers that enforce structured output.
const (
	resumeSchemaName  = "resume_package"
	projectSchemaName = "project_schema"
)

var (
	resumeSchemaOnce sync.Once
	resumeSchema     *jsonschema.Schema
	resumeSchemaErr  error

	projectSchemaOnce sync.Once
	projectSchema     *jsonschema.Schema
	projectSchemaErr  error

	printer = message.NewPrinter(language.English)
)

// compileSchema compiles one embedded schema document.
func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling %s schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name+".json", doc); err != nil {
		return nil, fmt.Errorf("adding %s schema resource: %w", name, err)
	}
	schema, err := c.Compile(name + ".json")
	if err != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", name, err)
	}
	return schema, nil
}

func getResumeSchema() (*jsonschema.Schema, error) {
	resumeSchemaOnce.Do(func() {
		resumeSchema, resumeSchemaErr = compileSchema(resumeSchemaName, resumePackageSchemaBytes)
	})
	return resumeSchema, resumeSchemaErr
}

func getProjectSchema() (*jsonschema.Schema, error) {
	projectSchemaOnce.Do(func() {
		projectSchema, projectSchemaErr = compileSchema(projectSchemaName, projectUpdateSchemaBytes)
	})
	return projectSchema, projectSchemaErr
}

// validateAgainst checks raw JSON against a compiled schema and flattens
// the leaf causes into one readable error.
func validateAgainst(schema *jsonschema.Schema, raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	var issues []string
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return ve
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(issues, "; "))
}

// collectIssues recursively walks the error tree for leaf errors.
func collectIssues(ve *jsonschema.ValidationError, issues *[]string) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = "document"
		}
		msg := ve.Error()
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}
		*issues = append(*issues, fmt.Sprintf("%s: %s", path, msg))
		return
	}
	for _, cause := range ve.Causes {
		collectIssues(cause, issues)
	}
}

// CleanJSON strips the markdown code fences models sometimes wrap around
// JSON replies.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
