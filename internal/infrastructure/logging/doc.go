// Package logging provides structured logging for tabletop-core.
//
// It wraps log/slog with config-driven level, format, and output
// selection, plus default service attributes. All methods are safe for
// concurrent use.
package logging
