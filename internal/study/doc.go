// Package study implements the session loop as event handlers on the bus:
// a session request or a committed grade surfaces the next due card, an
// answer request opens a view and reveals the back side, and a selected
// grade runs the scheduler and commits the outcome exactly once.
//
// The handlers treat the translator as optional: when translation fails
// or is disabled the original text is shown instead. Image work is handed
// to the background coordinator and never blocks the session.
package study
