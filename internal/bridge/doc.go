// Package bridge lets parallel simulation jobs talk to services that are not
// safe for concurrent use (audio mixer, light pool, camera rig, UI texts,
// network transport).
//
// A Bridge pairs three pieces:
//
//   - a Channel that jobs append commands to, one lane per worker;
//   - a ResultTable holding at most one result per originating entity;
//   - a Property holding an immutable snapshot of the service state.
//
// Once per tick, on the loop goroutine and after all jobs have joined, Drain
// applies every queued command to the service, publishes results, and
// replaces the snapshot. Results published by the drain of tick N become
// readable at the start of tick N+1 and disappear when tick N+1 drains.
// Jobs must never assume same-tick visibility of anything they requested.
package bridge
