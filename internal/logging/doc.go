// Package logging provides a unified logging interface for the conductance fitter.
// It abstracts the underlying logging implementation, allowing consistent logging
// across components while supporting a JSON backend (zerolog) and a
// human-readable console backend (slog with tint).
package logging
