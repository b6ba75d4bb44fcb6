// Package session runs one conflict resolution pass over a set of working
// trees.
//
// # Lifecycle
//
// Every call to Resolve, ResolveNoProceed or Run starts from scratch:
//
//  1. Detect the unmerged files across all roots.
//  2. If there are none, finish with NothingToMerge. A first attempt calls
//     Hooks.ProceedIfNothingToMerge and returns its answer; a retry from a
//     notification returns true without calling any hook.
//  3. Otherwise show the merge tool over exactly those files and block until
//     the user closes it.
//  4. Detect again. No files left means Resolved, and a first attempt calls
//     Hooks.ProceedAfterAllMerged. Files left means Unresolved: a warning
//     with a "Resolve..." action is published and false is returned.
//
// A detection or hook error ends the pass with DetectionFailed and an error
// notification. Errors are never retried automatically.
//
// # Retries
//
// Activating "Resolve..." expires the warning and schedules ResolveNoProceed
// on the background runner, so the goroutine handling the action never waits
// for the merge tool. Each retry is an independent pass; overlapping passes
// against the same roots are tolerated and the working tree is the only
// shared state.
package session
