package store

import (
	"context"
	"errors"

	"lightnav/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// SavePlan assigns the plan an ID and persists it.
	SavePlan(ctx context.Context, plan *model.RoutePlan) (string, error)
	GetPlan(ctx context.Context, id string) (*model.RoutePlan, error)
	ListPlans(ctx context.Context, cursor string, limit int) (items []*model.RoutePlan, nextCursor string, err error)
	// ReplacePlan overwrites a stored plan in place, keeping its ID.
	ReplacePlan(ctx context.Context, id string, plan *model.RoutePlan) error
	DeletePlan(ctx context.Context, id string) error
}

var ErrNotFound = errors.New("not found")
