package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Writer is the part of Repository that business transactions need.
type Writer interface {
	InsertEvent(ctx context.Context, tx pgx.Tx, event *Event) error
}

// NewEvent builds a pending event. id should be the same id embedded in the
// payload so consumers can deduplicate on it.
func NewEvent(id uuid.UUID, aggregateType string, aggregateID uuid.UUID, routingKey string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", routingKey, err)
	}
	return &Event{
		ID:            id,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoutingKey:    routingKey,
		Payload:       body,
		Status:        StatusPending,
	}, nil
}

// InsertEventInTx builds the event and writes it with w inside tx.
func InsertEventInTx(
	ctx context.Context,
	tx pgx.Tx,
	w Writer,
	id uuid.UUID,
	aggregateType string,
	aggregateID uuid.UUID,
	routingKey string,
	payload any,
) error {
	event, err := NewEvent(id, aggregateType, aggregateID, routingKey, payload)
	if err != nil {
		return err
	}
	return w.InsertEvent(ctx, tx, event)
}
