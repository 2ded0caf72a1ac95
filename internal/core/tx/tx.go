// Package tx defines the transaction boundary domain code depends on.
package tx

import "context"

// Manager runs functions inside a database transaction. The active
// transaction travels in the context; repositories pick it up from there.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
