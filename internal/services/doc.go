// Package services holds the error taxonomy and context annotations shared
// by the packing pipeline and its collaborators.
//
// Errors carry a sentinel marker (external tool, validation, configuration,
// not found, transient) wrapped around component/operation detail so callers
// can classify failures with errors.Is without parsing messages.
package services
