// Package log provides structured protocol capture for remctl.
//
// This is separate from operational logging (slog). Protocol capture
// records every token sent or received and every handshake state change
// as a machine-readable event trace for debugging interoperability.
//
// # Basic Usage
//
//	// Console, via slog at debug level
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/tmp/remctl.rlog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Transport: one TokenEvent per token (flag, size, truncated payload)
//   - Session: StateChangeEvent for handshake transitions
//   - Any layer: ErrorEventData
//
// Token payloads are ciphertext, MICs or context tokens; plaintext
// commands are never captured.
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with integer keys,
// conventionally with the .rlog extension. The remctl-log command views
// and summarizes them.
package log
