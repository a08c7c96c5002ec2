package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do runs fn in one transaction. Calls made with the ctx passed to fn join it.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
