package directive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalid is matched by every Parse failure
var ErrInvalid = errors.New("invalid directives")

// Parse decodes and validates a JSON directive sequence
func Parse(data []byte) ([]Directive, error) {
	var ds []Directive
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := Validate(ds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return ds, nil
}

// ToJSON converts a directive sequence to indented JSON
func ToJSON(ds []Directive) ([]byte, error) {
	return json.MarshalIndent(ds, "", "  ")
}
