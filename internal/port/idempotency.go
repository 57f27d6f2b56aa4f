package port

import "context"

type IdempotencyGuard interface {
	// Reserve claims a request key, returning false if it is already taken.
	Reserve(ctx context.Context, key string) (bool, error)

	// Release frees a claimed key so the caller may retry the same request.
	Release(ctx context.Context, key string) error
}
