package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/ports"
)

// Event names published after committed transitions.
const (
	EventListingCreated   = "listing:created"
	EventListingUpdated   = "listing:updated"
	EventListingCancelled = "listing:cancelled"
	EventListingSold      = "listing:sold"
	EventOfferCreated     = "offer:created"
	EventOfferCancelled   = "offer:cancelled"
	EventOfferAccepted    = "offer:accepted"
	EventOfferRejected    = "offer:rejected"
	EventSpaceCreated     = "space:created"
	EventSpaceUpdated     = "space:updated"
	EventSpaceDeleted     = "space:deleted"
	EventTileCreated      = "tile:created"
	EventTileUpdated      = "tile:updated"
)

// notify publishes a state-change event. Best-effort: failures are logged
// and swallowed, never surfaced to the originating request.
func notify(ctx context.Context, pub ports.EventPublisher, log *logrus.Entry, event string, payload any, scope string) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event, payload, scope); err != nil {
		log.WithError(err).WithField("event", event).Warn("failed to publish event")
	}
}
