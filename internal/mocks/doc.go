// Package mocks provides in-memory implementations of the store
// interfaces and the generation collaborators for testing. Each mock
// carries optional function fields that override the default in-memory
// behavior per test.
package mocks
