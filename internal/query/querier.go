package query

import (
	"context"
	"errors"

	"Go2NetLoss/internal/model"
)

// ErrNotFound is returned when a scenario has no stored summary.
var ErrNotFound = errors.New("scenario not found")

// Querier defines the interface for reading stored scenario summaries.
type Querier interface {
	// ListGroups returns the latest summary of every scenario, ordered by
	// network error type and config value.
	ListGroups(ctx context.Context) ([]*model.GroupSummary, error)

	// GetGroup returns the latest summary of one scenario or ErrNotFound.
	GetGroup(ctx context.Context, networkErrorType, configValue string) (*model.GroupSummary, error)
}
