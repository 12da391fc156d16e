// Package events provides the in-process publish/subscribe dispatcher that
// drives the study-session state machine.
//
// Handlers subscribe to an event type in one of two modes. Sync handlers
// run before Publish returns, in registration order; the first error aborts
// the remaining handlers of that event and propagates to the publisher.
// Background handlers are scheduled after the synchronous wave completes
// and run on their own goroutines; their errors are logged and never reach
// the publisher.
//
// Events published from inside a sync handler are queued and dispatched
// only after all handlers of the current event finish (breadth-first
// draining), so a single Publish call produces one deterministic global
// event order and the call stack stays flat.
//
// The Bus is an instantiable object, not a process-wide singleton, so
// tests can run isolated instances side by side.
package events
