package domain

import "context"

// Transactor runs fn within a single database transaction. Repositories
// called with the context passed to fn join that transaction, so an
// invitation response and all its side effects (penalty write, audit rows,
// point grants) commit or roll back as one unit.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
