package post

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// createInputSchema is the input of social.chirp.post.create.
// Content length is checked by the post service in user-perceived characters.
const createInputSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {"type": "string"}
	},
	"additionalProperties": false
}`

var createSchema = gojsonschema.NewStringLoader(createInputSchema)

// validateCreateInput checks the raw request body against the create schema
func validateCreateInput(body []byte) error {
	result, err := gojsonschema.Validate(createSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
