package session

import "context"

// Hooks are the points where an operation continues once conflicts are out
// of the way. Both are skipped on retries started from a notification.
type Hooks interface {
	// ProceedIfNothingToMerge runs when the first detection finds no
	// unmerged files. Its result is the result of the session.
	ProceedIfNothingToMerge(ctx context.Context) (bool, error)
	// ProceedAfterAllMerged runs when the merge tool resolved every file.
	// Its result is the result of the session.
	ProceedAfterAllMerged(ctx context.Context) (bool, error)
}

// NoopHooks succeed without doing anything.
type NoopHooks struct{}

func (NoopHooks) ProceedIfNothingToMerge(context.Context) (bool, error) { return true, nil }
func (NoopHooks) ProceedAfterAllMerged(context.Context) (bool, error)   { return true, nil }

// HookFuncs builds Hooks from functions. A nil function succeeds.
type HookFuncs struct {
	NothingToMerge func(ctx context.Context) (bool, error)
	AllMerged      func(ctx context.Context) (bool, error)
}

func (h HookFuncs) ProceedIfNothingToMerge(ctx context.Context) (bool, error) {
	if h.NothingToMerge == nil {
		return true, nil
	}
	return h.NothingToMerge(ctx)
}

func (h HookFuncs) ProceedAfterAllMerged(ctx context.Context) (bool, error) {
	if h.AllMerged == nil {
		return true, nil
	}
	return h.AllMerged(ctx)
}
