package fulfillment

import "context"

// IntegrationHandler receives ledger events after they commit.
type IntegrationHandler interface {
	HandleOrderPlaced(ctx context.Context, evt OrderPlacedEvent) error
	HandleOrderStatusChanged(ctx context.Context, evt OrderStatusChangedEvent) error
}
