// Package task runs deferred image work off the session loop: leech-card
// illustrations and session completion art. Jobs are deduplicated while
// in flight and processed by a small worker pool; a failed job is logged
// and dropped, never retried and never surfaced to the user.
package task
