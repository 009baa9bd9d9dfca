// Package log provides structured event logging for mesh attribute
// operations.
//
// This package defines the Logger interface and Event types for capturing
// attribute-level events (policy decisions, registry changes, attribute
// scans). It is separate from operational logging (slog) - event capture
// provides a complete machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	m := mesh.New(mesh.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For production: write to binary file
//	fl, _ := log.NewFileLogger("/var/log/tessera/session.tlog")
//	m := mesh.New(mesh.WithLogger(fl))
//
//	// Both: use MultiLogger
//	m := mesh.New(mesh.WithLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	)))
//
// # Event Types
//
// Events are captured at three layers:
//   - Policy: copy-on-write promotions and rejected operations (PolicyEvent)
//   - Registry: attribute lifecycle changes (RegistryEvent)
//   - Scan: sequential and parallel attribute traversals (ScanEvent)
//
// Errors surfaced during mesh operations have a dedicated event type.
//
// # File Format
//
// Log files use CBOR encoding with .tlog extension. The tessera-inspect
// CLI tool provides viewing and filtering capabilities.
package log
