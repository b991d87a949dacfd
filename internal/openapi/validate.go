package openapi

import (
	"fmt"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
)

// Validate checks a rendered document against the OpenAPI schema and returns
// one message per problem found. An error means the document could not be
// loaded at all.
func Validate(data []byte) ([]string, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		return nil, fmt.Errorf("creating validator: %w", errs[0])
	}

	valid, validationErrs := v.ValidateDocument()
	if valid {
		return nil, nil
	}

	var problems []string
	for _, e := range validationErrs {
		if e.Reason != "" {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Message, e.Reason))
		} else {
			problems = append(problems, e.Message)
		}
	}
	return problems, nil
}
