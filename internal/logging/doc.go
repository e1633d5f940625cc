// Package logging constructs the slog loggers used across tankobon.
//
// Two handler formats are supported: "console" renders single-line records
// with a leading component label for interactive use, and "json" emits
// structured records for log collection. Context annotations added by the
// services package (user, run) are folded into records via WithContext so
// every line from a packing run carries its identifiers.
package logging
