// Package poll keeps the trip store fresh without a push channel.
//
// The trip service offers no server push, so the client re-fetches its
// target on a fixed interval. A Poller owns one target: either the
// actor's whole trip list or a single trip by id.
//
// # Scheduling discipline
//
//   - At most one fetch is in flight per poller; a tick that fires while
//     a fetch is outstanding is skipped, so slow networks never build up
//     a request backlog.
//   - A failed tick is recorded on a side channel (LastError, OnError)
//     and never halts the schedule.
//   - Stop is safe to call mid-fetch. Each Start issues a monotonically
//     increasing generation token; a fetch result whose generation is no
//     longer current is discarded instead of reconciled.
//   - Nudge and RunOnce provide the immediate out-of-band refresh the
//     mutation gateway triggers after a successful status change.
package poll
