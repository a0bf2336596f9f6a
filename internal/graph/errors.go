package graph

import "errors"

// Validation errors are local to the offending record: callers count and
// skip, they never abort an in-flight batch or analysis pass.
var (
	// ErrDuplicateNode is returned when a claim id is already present.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrUnknownEndpoint is returned when an edge references a missing node.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrSelfLoop is returned when an edge's source and target are the same
	// claim. A claim must not attack or support itself.
	ErrSelfLoop = errors.New("self-loop edge")

	// ErrInvalidEnumValue is returned for a claim_type, relation_type,
	// fallacy_type or verdict outside the enumerated sets.
	ErrInvalidEnumValue = errors.New("invalid enum value")

	// ErrMalformedItem is the catch-all for an individual record that cannot
	// be validated (bad timestamps, out-of-range confidence, empty id).
	ErrMalformedItem = errors.New("malformed item")

	// ErrUnknownClaim is returned when an annotation or fact-check references
	// a claim that is not in the graph.
	ErrUnknownClaim = errors.New("unknown claim id")
)
