// Package poll implements the polling session state machine.
//
// An [Engine] drives a base-station session through a poll lifecycle
// (Idle, Initializing, Active, Stopping), ingests clicker responses,
// deduplicates them into a [Log], and keeps the base station's two-line
// display updated with the running [Tally].
//
// # Timelines
//
// While active, two timelines run concurrently: the ingestion loop reads
// the transport with a short timeout and records decoded responses, and a
// periodic refresh loop rewrites the display once per second. Both funnel
// display writes through the session's rate limiter, so bursts collapse
// to at most one physical write per line per rate-limit window.
//
// # Stopping
//
// [Engine.Run] blocks until a stop is requested: by [Engine.RequestStop],
// by cancellation of the run context, or implicitly by a transport error
// during ingestion. Stop requests are idempotent; the base-station stop
// sequence is issued exactly once per run.
package poll
