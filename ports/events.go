package ports

import "context"

// EventPublisher fans state-change events out to subscribers. Publishing is
// best-effort: callers log failures and never roll back the originating
// request.
type EventPublisher interface {
	// Publish sends an event such as "listing:sold". Scope is typically the
	// space identifier, letting the transport deliver only to interested
	// subscribers; it may be empty for global events.
	Publish(ctx context.Context, event string, payload any, scope string) error
}
