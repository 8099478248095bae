package planner

import "context"

// Repository holds per-user planning sessions for the lifetime of the
// process. No durable persistence exists by design.
type Repository interface {
	Get(ctx context.Context, userID string) (Session, bool, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, userID string) error
}
