// Package api is the channel adapter edge: thin HTTP handlers that turn
// requests into bus events and reply from the per-user outbox the study
// handlers fill synchronously. The handlers contain no study logic; they
// validate input, publish, and translate error sentinels to status codes.
package api
