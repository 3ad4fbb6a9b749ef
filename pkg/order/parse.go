package order

import (
	"encoding/json"
	"fmt"
)

// Parse parses an order JSON document and validates it
func Parse(data []byte) (*Order, error) {
	var o Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := Validate(&o); err != nil {
		return nil, err
	}

	return &o, nil
}

// Load reads an order from a local path or an http(s) URL
func Load(pathOrURL string) (*Order, error) {
	return Source{}.Load(pathOrURL)
}
