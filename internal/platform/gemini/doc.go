// Package gemini implements the generation interfaces on top of Google's
// Gemini API. It provides a text translator and an image generator; both
// map backend failures onto the generation package's sentinel errors so
// callers can degrade gracefully without knowing the transport.
package gemini
