// Package notifications publishes mashup run events to an ntfy topic.
//
// When no topic is configured NewService returns a no-op implementation, so
// callers never need to check whether notifications are enabled. The
// [notifications] completed and errors switches silence individual event
// kinds without disabling the topic.
package notifications
