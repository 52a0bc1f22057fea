package model

import "errors"

var (
	// ErrMalformedTimestamp is returned for a timestamp that cannot be parsed even after repair.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrMalformedRecord is returned for a line with a bad shape or a non-numeric counter.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrDuplicateIteration is returned when two input families claim the same iteration of a scenario.
	ErrDuplicateIteration = errors.New("duplicate iteration")
	// ErrMissingTechniqueData marks an absent input; callers substitute the sentinel value.
	ErrMissingTechniqueData = errors.New("missing technique data")
)
