package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReplayService republishes events on operator request.
type ReplayService struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

func NewReplayService(store Store, publisher Publisher, logger *zap.Logger) *ReplayService {
	return &ReplayService{store: store, publisher: publisher, logger: logger}
}

// ReplayEvent publishes one event immediately, whatever its status.
func (s *ReplayService) ReplayEvent(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.store.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}

	if err := publishEvent(ctx, s.publisher, event); err != nil {
		// Hand it back to the dispatcher with a fresh budget.
		if resetErr := s.store.ResetEvent(ctx, eventID); resetErr != nil {
			return fmt.Errorf("%w (reset: %v)", err, resetErr)
		}
		return err
	}

	if err := s.store.MarkAsSent(ctx, eventID); err != nil {
		return err
	}
	s.logger.Info("Outbox event replayed",
		zap.String("event_id", eventID.String()),
		zap.String("routing_key", event.RoutingKey),
	)
	return nil
}

// ReplayFailedEvents replays up to limit failed events and returns how many
// were published.
func (s *ReplayService) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	events, err := s.store.GetFailedEvents(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to get failed events: %w", err)
	}

	replayed := 0
	for _, event := range events {
		if err := s.ReplayEvent(ctx, event.ID); err != nil {
			s.logger.Warn("Replay failed",
				zap.String("event_id", event.ID.String()),
				zap.Error(err),
			)
			continue
		}
		replayed++
	}
	return replayed, nil
}
