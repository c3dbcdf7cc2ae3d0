package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing graph entity.
	ErrNotFound = errors.New("not found")
	// ErrMarkerLabelNotFound signals an NS-Forest marker label with no direct or
	// inherited marker behind it.
	ErrMarkerLabelNotFound = errors.New("nsforest marker label not found")
	// ErrMissingIdentifier signals a node without an IRI.
	ErrMissingIdentifier = errors.New("node has no iri")
)

// MarkerLookupError wraps ErrMarkerLabelNotFound with the entity and label
// that failed, so upstream ontology defects can be traced.
type MarkerLookupError struct {
	IRI   string
	Label string
}

func (e *MarkerLookupError) Error() string {
	return fmt.Sprintf("%s: entity %s, label %q", ErrMarkerLabelNotFound.Error(), e.IRI, e.Label)
}

func (e *MarkerLookupError) Unwrap() error { return ErrMarkerLabelNotFound }

// NewMarkerLookupError creates a marker lookup error.
func NewMarkerLookupError(iri, label string) error {
	return &MarkerLookupError{IRI: iri, Label: label}
}

// IsDataFault reports whether err is an ontology data-integrity fault, as
// opposed to an I/O failure of a collaborator.
func IsDataFault(err error) bool {
	return errors.Is(err, ErrMarkerLabelNotFound) || errors.Is(err, ErrMissingIdentifier)
}
