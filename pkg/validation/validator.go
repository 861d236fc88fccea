package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxKeyLength      = 200
	MaxLabelLength    = 200
	MaxEquationLength = 10000
	MaxLabelKeys      = 4
	MaxNodes          = 10000
	MaxLinks          = 20000
)

func init() {
	validate = validator.New()
}

// Struct validates the `validate` tags of any struct with the shared validator
// instance.
func Struct(v any) error {
	if v == nil {
		return errors.New("value cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// NodeRecord is a node as it arrives in an exchange document, with the key
// already normalised to a string.
type NodeRecord struct {
	Key      string `json:"key" validate:"required,max=200"`
	Category string `json:"category" validate:"required,oneof=stock cloud variable valve"`
	Label    string `json:"label" validate:"max=200"`
	Equation string `json:"equation" validate:"max=10000"`
}

// LinkRecord is a link as it arrives in an exchange document. An empty key
// asks the store to assign one.
type LinkRecord struct {
	Key       string   `json:"key" validate:"omitempty,max=200"`
	Category  string   `json:"category" validate:"required,oneof=flow influence"`
	From      string   `json:"from" validate:"required,max=200"`
	To        string   `json:"to" validate:"required,max=200,nefield=From"`
	LabelKeys []string `json:"labelKeys" validate:"omitempty,max=4,dive,required,max=200"`
}

// ValidateNodeRecord validates a node record
func ValidateNodeRecord(rec *NodeRecord) error {
	if rec == nil {
		return errors.New("node record cannot be nil")
	}

	if err := validate.Struct(rec); err != nil {
		return formatValidationError(err)
	}

	if strings.TrimSpace(rec.Key) != rec.Key {
		return fmt.Errorf("Key: %q has leading or trailing whitespace", rec.Key)
	}

	// Clouds are unnamed endpoints; everything else is referenced by label.
	if rec.Category != "cloud" && strings.TrimSpace(rec.Label) == "" {
		return fmt.Errorf("Label: required for %s %q", rec.Category, rec.Key)
	}
	if rec.Category == "cloud" && rec.Equation != "" {
		return fmt.Errorf("Equation: clouds do not carry an equation (node %q)", rec.Key)
	}

	return nil
}

// ValidateLinkRecord validates a link record
func ValidateLinkRecord(rec *LinkRecord) error {
	if rec == nil {
		return errors.New("link record cannot be nil")
	}

	if err := validate.Struct(rec); err != nil {
		return formatValidationError(err)
	}

	switch rec.Category {
	case "flow":
		if len(rec.LabelKeys) == 0 {
			return fmt.Errorf("LabelKeys: flow %s->%s has no valve", rec.From, rec.To)
		}
	case "influence":
		if len(rec.LabelKeys) > 0 {
			return fmt.Errorf("LabelKeys: influence %s->%s cannot carry label nodes", rec.From, rec.To)
		}
	}

	return nil
}

// ValidateDocumentSize validates the node and link counts of a document
func ValidateDocumentSize(nodes, links int) error {
	if nodes > MaxNodes {
		return fmt.Errorf("document must not exceed %d nodes, got %d", MaxNodes, nodes)
	}
	if links > MaxLinks {
		return fmt.Errorf("document must not exceed %d links, got %d", MaxLinks, links)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: %q must be one of [%s]", field, fmt.Sprint(e.Value()), param)
		case "nefield":
			return fmt.Errorf("%s: must differ from %s", field, param)
		case "dive":
			// For array elements
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
