// Package encoder turns directive sequences into printer command buffers
package encoder

import (
	"fmt"
	"strings"
)

// Family is the command-set dialect a printer understands
type Family string

const (
	FamilyEpson Family = "epson"
	FamilyStar  Family = "star"
)

// Families returns every supported family
func Families() []Family {
	return []Family{FamilyEpson, FamilyStar}
}

// IsValid reports whether f is a supported family
func (f Family) IsValid() bool {
	switch f {
	case FamilyEpson, FamilyStar:
		return true
	}
	return false
}

// String returns the lowercase family name
func (f Family) String() string {
	return string(f)
}

// ParseFamily resolves a printer-type label, ignoring case and surrounding spaces
func ParseFamily(label string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(label)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPrinterFamily, label)
	}
	return f, nil
}
