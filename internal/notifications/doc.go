// Package notifications delivers packing and delivery events via ntfy.
//
// The default implementation publishes to the topic configured in
// config.toml and gracefully degrades to a no-op when no topic is set.
// Per-event-group toggles let a user silence packing progress while keeping
// error alerts, without any caller needing to know.
//
// All packing and delivery code depends only on the Service interface, so
// alternative transports slot in here.
package notifications
